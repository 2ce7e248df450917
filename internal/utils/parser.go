package utils

import (
	"strconv"
	"strings"
)

// DefaultReleaseYear 目录返回的上映日期缺失或无法解析时的兜底年份
const DefaultReleaseYear = 2000

// ParseReleaseYear 从目录的上映日期字符串里取年份
// 格式通常为 YYYY-MM-DD，也可能是空串或只有年份
func ParseReleaseYear(releaseDate string) int {
	parts := strings.SplitN(strings.TrimSpace(releaseDate), "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return DefaultReleaseYear
	}
	return year
}
