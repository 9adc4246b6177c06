package services

import (
	"context"
	"log"
	"strings"

	"quiz-learning-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BootstrapService runs the signup fan-out: one identity record, one user
// row, then one progress row per catalog item across the four gameplay
// domains. Each step gates on the previous one; nothing is rolled back on
// failure (the identity record can outlive a failed later step — the seed
// inserts are upserts, so re-submitting the form finishes the job without
// duplicating rows).
type BootstrapService struct {
	DB       *gorm.DB
	Identity IdentityService
}

func NewBootstrapService(db *gorm.DB, identity IdentityService) *BootstrapService {
	return &BootstrapService{DB: db, Identity: identity}
}

// SignUp creates the identity record and the fully-initialized user.
// Returns the identity id on success; on failure the returned error carries
// the banner message for the signup form.
func (s *BootstrapService) SignUp(ctx context.Context, email, username, password string) (string, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" || password == "" {
		return "", flowErr(ErrValidation, "Email, username and password are required", nil)
	}

	userID, err := s.Identity.SignUp(ctx, email, password)
	if err != nil {
		log.Printf("❌ [SIGNUP] identity signup failed for %s: %v", email, err)
		// Identity rejections (bad email, already registered, unreachable)
		// are surfaced verbatim, same as the provider reports them.
		return "", flowErr(ErrAuth, err.Error(), err)
	}

	user := models.User{
		ID:       userID,
		Username: username,
		Slug:     slug.Make(username),
		Email:    email,
		XP:       0,
		Points:   0,
		Badges1:  false,
		Badges2:  false,
		Badges3:  false,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		log.Printf("❌ [SIGNUP] user row insert failed for %s: %v", userID, err)
		return "", flowErr(ErrProfileCreation, "Failed to create user profile", err)
	}

	if err := s.seedQuizProgress(ctx, userID); err != nil {
		return "", err
	}
	if err := s.seedMissionProgress(ctx, userID); err != nil {
		return "", err
	}
	if err := s.seedAchievementProgress(ctx, userID); err != nil {
		return "", err
	}
	if err := s.seedLevelStreaks(ctx, userID); err != nil {
		return "", err
	}

	log.Printf("✅ [SIGNUP] bootstrapped user %s (%s)", username, userID)
	return userID, nil
}

func (s *BootstrapService) seedQuizProgress(ctx context.Context, userID string) error {
	var questions []models.QuizQuestion
	if err := s.DB.WithContext(ctx).Select("id", "level_id").Find(&questions).Error; err != nil {
		log.Printf("❌ [SIGNUP] question catalog read failed: %v", err)
		return flowErr(ErrCatalogRead, "Failed to setup user progress", err)
	}
	if len(questions) == 0 {
		return nil
	}

	rows := make([]models.UserQuizProgress, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, models.UserQuizProgress{
			ID:          uuid.NewString(),
			UserID:      userID,
			LevelID:     q.LevelID,
			QuestionID:  q.ID,
			IsCompleted: false,
		})
	}

	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		log.Printf("❌ [SIGNUP] quiz progress seed failed for %s: %v", userID, err)
		return flowErr(ErrProgressSeed, "Failed to setup user progress", err)
	}
	return nil
}

func (s *BootstrapService) seedMissionProgress(ctx context.Context, userID string) error {
	var missions []models.Mission
	if err := s.DB.WithContext(ctx).Find(&missions).Error; err != nil {
		log.Printf("❌ [SIGNUP] mission catalog read failed: %v", err)
		return flowErr(ErrCatalogRead, "Failed to setup mission progress", err)
	}
	if len(missions) == 0 {
		return nil
	}

	rows := make([]models.UserMissionProgress, 0, len(missions))
	for _, m := range missions {
		// Snapshot the mission's current terms — later catalog edits must
		// not change a level the user is already working toward.
		rows = append(rows, models.UserMissionProgress{
			ID:                      uuid.NewString(),
			UserID:                  userID,
			MissionID:               m.ID,
			ProgressPoint:           0,
			CurrentLevel:            1,
			CurrentLevelRequirement: m.LevelRequirement,
			CurrentXPReward:         m.XPReward,
			CurrentPointsReward:     m.PointsReward,
			LastCompletedAt:         nil,
		})
	}

	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "mission_id"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		log.Printf("❌ [SIGNUP] mission progress seed failed for %s: %v", userID, err)
		return flowErr(ErrProgressSeed, "Failed to setup mission progress", err)
	}
	return nil
}

func (s *BootstrapService) seedAchievementProgress(ctx context.Context, userID string) error {
	var achievements []models.Achievement
	if err := s.DB.WithContext(ctx).Find(&achievements).Error; err != nil {
		log.Printf("❌ [SIGNUP] achievement catalog read failed: %v", err)
		return flowErr(ErrCatalogRead, "Failed to setup achievement progress", err)
	}
	if len(achievements) == 0 {
		return nil
	}

	rows := make([]models.UserAchievementProgress, 0, len(achievements))
	for _, a := range achievements {
		rows = append(rows, models.UserAchievementProgress{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: a.ID,
			ProgressPoint: 0,
		})
	}

	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		log.Printf("❌ [SIGNUP] achievement progress seed failed for %s: %v", userID, err)
		return flowErr(ErrProgressSeed, "Failed to setup achievement progress", err)
	}
	return nil
}

func (s *BootstrapService) seedLevelStreaks(ctx context.Context, userID string) error {
	var levels []models.QuizLevel
	if err := s.DB.WithContext(ctx).Select("id").Find(&levels).Error; err != nil {
		log.Printf("❌ [SIGNUP] level catalog read failed: %v", err)
		return flowErr(ErrCatalogRead, "Failed to setup level streaks", err)
	}
	if len(levels) == 0 {
		return nil
	}

	rows := make([]models.LevelStreak, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, models.LevelStreak{
			ID:             uuid.NewString(),
			UserID:         userID,
			LevelID:        l.ID,
			CurrentStreak:  0,
			LastQuestionID: nil,
		})
	}

	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "level_id"}},
		DoNothing: true,
	}).Create(&rows).Error; err != nil {
		log.Printf("❌ [SIGNUP] level streak seed failed for %s: %v", userID, err)
		return flowErr(ErrProgressSeed, "Failed to setup level streaks", err)
	}
	return nil
}
