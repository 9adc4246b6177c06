package models

// User is the profile row for one identity-service account.
// The primary key is the identity service's user id — created exactly once
// at signup bootstrap, never deleted here. Points/XP/streak are mutated by
// gameplay, the badge flags by profile reconciliation (monotonic: once true,
// never flipped back).
type User struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"` // identity service UUID
	Username     string  `gorm:"index;not null" json:"username"`
	Slug         string  `gorm:"uniqueIndex;not null" json:"slug"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	ProfilePhoto *string `json:"profile_photo,omitempty"`

	Points int64 `json:"points" gorm:"default:0"`
	XP     int64 `json:"xp" gorm:"default:0"`

	// Tier badges: beginner / intermediate / expert
	Badges1 bool `json:"badges1" gorm:"default:false"`
	Badges2 bool `json:"badges2" gorm:"default:false"`
	Badges3 bool `json:"badges3" gorm:"default:false"`

	LongestQuizStreak int `json:"longest_quiz_streak" gorm:"default:0"`

	Timestamps
}
