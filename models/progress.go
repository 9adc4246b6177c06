package models

import (
	"time"

	"gorm.io/gorm"
)

// Progress rows: one row per (user, catalog item), created in bulk at signup
// bootstrap with zeroed fields and mutated by gameplay afterwards. The
// composite unique indexes are the conflict targets for idempotent seeding.

type UserQuizProgress struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID      string `gorm:"uniqueIndex:idx_user_question;type:uuid;not null" json:"user_id"`
	LevelID     string `gorm:"index;type:uuid;not null" json:"level_id"`
	QuestionID  string `gorm:"uniqueIndex:idx_user_question;type:uuid;not null" json:"question_id"`
	IsCompleted bool   `json:"is_completed" gorm:"default:false"`

	Timestamps
}

// UserMissionProgress carries a snapshot of the mission's reward/requirement
// values as they were at signup, so later catalog edits don't retroactively
// change a user's current level terms.
type UserMissionProgress struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string `gorm:"uniqueIndex:idx_user_mission;type:uuid;not null" json:"user_id"`
	MissionID string `gorm:"uniqueIndex:idx_user_mission;type:uuid;not null" json:"mission_id"`

	ProgressPoint int `json:"progress_point" gorm:"default:0"`
	CurrentLevel  int `json:"current_level" gorm:"default:1"`

	CurrentLevelRequirement int   `json:"current_level_requirement"`
	CurrentXPReward         int64 `json:"current_xp_reward"`
	CurrentPointsReward     int64 `json:"current_points_reward"`

	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"` // null = not yet completed

	Timestamps
}

type UserAchievementProgress struct {
	ID            string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID        string `gorm:"uniqueIndex:idx_user_achievement;type:uuid;not null" json:"user_id"`
	AchievementID string `gorm:"uniqueIndex:idx_user_achievement;type:uuid;not null" json:"achievement_id"`

	ProgressPoint   int        `json:"progress_point" gorm:"default:0"`
	LastCompletedAt *time.Time `json:"last_completed_at,omitempty"`

	Timestamps
}

type LevelStreak struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"uniqueIndex:idx_user_level;type:uuid;not null" json:"user_id"`
	LevelID string `gorm:"uniqueIndex:idx_user_level;type:uuid;not null" json:"level_id"`

	CurrentStreak  int     `json:"current_streak" gorm:"default:0"`
	LastQuestionID *string `gorm:"type:uuid" json:"last_question_id,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
