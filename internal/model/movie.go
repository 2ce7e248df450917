package model

import (
	"time"
)

// Movie 榜单条目，归属且仅归属一个用户
// ranking 在同一用户的榜单内是 1..N 的稠密排列，按 rating 降序
type Movie struct {
	ID          int       `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Year        int       `json:"year" db:"year"`
	Description string    `json:"description" db:"description"`
	Rating      float64   `json:"rating" db:"rating"`
	Ranking     int       `json:"ranking" db:"ranking"`
	Review      string    `json:"review" db:"review"`
	Poster      string    `json:"poster" db:"poster"`
	OwnerID     int       `json:"owner_id" db:"owner_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Rated 是否已被打分（select 流程加入的条目初始未打分）
func (m *Movie) Rated() bool {
	return m.Rating > 0
}
