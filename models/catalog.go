package models

import "time"

// Catalog tables: read-only reference data. Rows pre-exist (seeded by the
// content pipeline, not this service) and are never written here.

type QuizLevel struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Position int    `json:"position" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type QuizQuestion struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	LevelID string `gorm:"index;type:uuid;not null" json:"level_id"`
	Prompt  string `gorm:"type:text" json:"prompt"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type Mission struct {
	ID               string `gorm:"primaryKey;type:uuid" json:"id"`
	Name             string `gorm:"not null" json:"name"`
	Description      string `gorm:"type:text" json:"description"`
	LevelRequirement int    `json:"level_requirement" gorm:"default:1"`
	XPReward         int64  `json:"xp_reward" gorm:"default:0"`
	PointsReward     int64  `json:"points_reward" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type Achievement struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Code        string `gorm:"uniqueIndex;not null" json:"code"` // e.g., "BEGINNER_TIER"
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Tier        int    `json:"tier" gorm:"default:0"` // 1=beginner, 2=intermediate, 3=expert

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}
