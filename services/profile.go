package services

import (
	"context"
	"errors"
	"log"
	"os"

	"quiz-learning-system/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// XPPerLevel is the flat XP span of one display level.
const XPPerLevel = 1000

// Default tier achievement ids from the seeded catalog. Overridable per
// environment since catalogs are provisioned separately.
const (
	defaultBeginnerAchievementID     = "0cc95048-c100-4f6c-bf4c-3b2ec372cddb"
	defaultIntermediateAchievementID = "20775b28-295d-40a7-b403-8ac2046d5719"
	defaultExpertAchievementID       = "946200c8-a676-4ffc-ab97-3015ddaa65af"
)

// TierAchievementIDs are the fixed catalog ids gating the three profile
// badges.
type TierAchievementIDs struct {
	Beginner     string
	Intermediate string
	Expert       string
}

func TierAchievementIDsFromEnv() TierAchievementIDs {
	ids := TierAchievementIDs{
		Beginner:     os.Getenv("BEGINNER_ACHIEVEMENT_ID"),
		Intermediate: os.Getenv("INTERMEDIATE_ACHIEVEMENT_ID"),
		Expert:       os.Getenv("EXPERT_ACHIEVEMENT_ID"),
	}
	if ids.Beginner == "" {
		ids.Beginner = defaultBeginnerAchievementID
	}
	if ids.Intermediate == "" {
		ids.Intermediate = defaultIntermediateAchievementID
	}
	if ids.Expert == "" {
		ids.Expert = defaultExpertAchievementID
	}
	return ids
}

// Ranker resolves a user's ordinal position on the global leaderboard.
// Absence of a rank is not an error — the profile degrades gracefully.
type Ranker interface {
	Rank(ctx context.Context, userID string) (rank int64, ok bool, err error)
}

// ProfileView is the aggregated read model the profile page renders.
type ProfileView struct {
	Email             string  `json:"email"`
	Username          string  `json:"username"`
	Slug              string  `json:"slug"`
	ProfilePhoto      *string `json:"profile_photo,omitempty"`
	Points            int64   `json:"points"`
	XP                int64   `json:"xp"`
	Badges1           bool    `json:"badges1"`
	Badges2           bool    `json:"badges2"`
	Badges3           bool    `json:"badges3"`
	LongestQuizStreak int     `json:"longest_quiz_streak"`

	Level            int64   `json:"level"`
	XPInLevel        int64   `json:"xp_in_level"`
	ProgressFraction float64 `json:"progress_fraction"`

	Rank *int64 `json:"rank,omitempty"`
}

// ProfileService builds the profile view: four concurrent reads, a monotonic
// badge reconciliation written back through the user row, derived level
// fields, and a best-effort rank lookup.
type ProfileService struct {
	DB     *gorm.DB
	Ranker Ranker
	Tiers  TierAchievementIDs
}

func NewProfileService(db *gorm.DB, ranker Ranker, tiers TierAchievementIDs) *ProfileService {
	return &ProfileService{DB: db, Ranker: ranker, Tiers: tiers}
}

// Aggregate returns the profile view for userID, or (nil, nil) when there is
// no identity or no profile row — a valid terminal state, not a failure.
// An unauthenticated call issues no store reads at all.
func (s *ProfileService) Aggregate(ctx context.Context, userID string) (*ProfileView, error) {
	if userID == "" {
		return nil, nil
	}

	var (
		user         models.User
		userFound    = true
		beginner     *models.UserAchievementProgress
		intermediate *models.UserAchievementProgress
		expert       *models.UserAchievementProgress
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.DB.WithContext(gctx).Where("id = ?", userID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			userFound = false
			return nil
		}
		return err
	})
	g.Go(func() (err error) {
		beginner, err = s.achievementRow(gctx, userID, s.Tiers.Beginner)
		return err
	})
	g.Go(func() (err error) {
		intermediate, err = s.achievementRow(gctx, userID, s.Tiers.Intermediate)
		return err
	})
	g.Go(func() (err error) {
		expert, err = s.achievementRow(gctx, userID, s.Tiers.Expert)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if !userFound {
		return nil, nil
	}

	// Reconcile badge flags: completed achievement ⇒ badge on. Monotonic OR
	// against the stored flags — an earned badge is never taken back.
	badges1 := user.Badges1 || completed(beginner)
	badges2 := user.Badges2 || completed(intermediate)
	badges3 := user.Badges3 || completed(expert)

	if badges1 != user.Badges1 || badges2 != user.Badges2 || badges3 != user.Badges3 {
		// Write-through: persist the computed truth once so subsequent
		// profile loads read it straight off the user row.
		if err := s.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"badges1": badges1,
				"badges2": badges2,
				"badges3": badges3,
			}).Error; err != nil {
			return nil, err
		}
		user.Badges1, user.Badges2, user.Badges3 = badges1, badges2, badges3
	}

	view := &ProfileView{
		Email:             user.Email,
		Username:          user.Username,
		Slug:              user.Slug,
		ProfilePhoto:      user.ProfilePhoto,
		Points:            user.Points,
		XP:                user.XP,
		Badges1:           user.Badges1,
		Badges2:           user.Badges2,
		Badges3:           user.Badges3,
		LongestQuizStreak: user.LongestQuizStreak,
		Level:             user.XP / XPPerLevel,
		XPInLevel:         user.XP % XPPerLevel,
	}
	view.ProgressFraction = float64(view.XPInLevel) / float64(XPPerLevel)

	if s.Ranker != nil {
		rank, ok, err := s.Ranker.Rank(ctx, userID)
		if err != nil {
			// Rank is decorative — log and serve the view without it.
			log.Printf("⚠️ [PROFILE] rank lookup failed for %s: %v", userID, err)
		} else if ok {
			view.Rank = &rank
		}
	}

	return view, nil
}

func (s *ProfileService) achievementRow(ctx context.Context, userID, achievementID string) (*models.UserAchievementProgress, error) {
	var row models.UserAchievementProgress
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func completed(row *models.UserAchievementProgress) bool {
	return row != nil && row.LastCompletedAt != nil
}
