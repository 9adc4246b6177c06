package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-learning-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Single connection: the shared in-memory DB lives as long as it does,
	// and concurrent aggregator reads serialize instead of fighting SQLite
	// table locks.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.QuizLevel{},
		&models.QuizQuestion{},
		&models.Mission{},
		&models.Achievement{},
		&models.UserQuizProgress{},
		&models.UserMissionProgress{},
		&models.UserAchievementProgress{},
		&models.LevelStreak{},
	))
	return db
}

// seedCatalogs loads a small but non-trivial reference catalog: two levels,
// five questions, three missions and the three tier achievements.
func seedCatalogs(t *testing.T, db *gorm.DB) (levels []models.QuizLevel, questions []models.QuizQuestion, missions []models.Mission, achievements []models.Achievement) {
	t.Helper()

	levels = []models.QuizLevel{
		{ID: uuid.NewString(), Name: "Basics", Position: 1},
		{ID: uuid.NewString(), Name: "Advanced", Position: 2},
	}
	require.NoError(t, db.Create(&levels).Error)

	for i := 0; i < 5; i++ {
		questions = append(questions, models.QuizQuestion{
			ID:      uuid.NewString(),
			LevelID: levels[i%len(levels)].ID,
			Prompt:  fmt.Sprintf("question %d", i+1),
		})
	}
	require.NoError(t, db.Create(&questions).Error)

	missions = []models.Mission{
		{ID: uuid.NewString(), Name: "Daily five", LevelRequirement: 5, XPReward: 100, PointsReward: 50},
		{ID: uuid.NewString(), Name: "Streak keeper", LevelRequirement: 3, XPReward: 60, PointsReward: 30},
		{ID: uuid.NewString(), Name: "Completionist", LevelRequirement: 10, XPReward: 500, PointsReward: 200},
	}
	require.NoError(t, db.Create(&missions).Error)

	tiers := TierAchievementIDsFromEnv()
	achievements = []models.Achievement{
		{ID: tiers.Beginner, Code: "BEGINNER_TIER", Name: "Beginner", Tier: 1},
		{ID: tiers.Intermediate, Code: "INTERMEDIATE_TIER", Name: "Intermediate", Tier: 2},
		{ID: tiers.Expert, Code: "EXPERT_TIER", Name: "Expert", Tier: 3},
	}
	require.NoError(t, db.Create(&achievements).Error)

	return levels, questions, missions, achievements
}

// fakeIdentity satisfies IdentityService without any network.
type fakeIdentity struct {
	id          string
	signUpErr   error
	signInErr   error
	recoverErr  error
	updateErr   error
	getUserID   string
	signUpCalls int
	updateCalls int
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (string, error) {
	f.signUpCalls++
	if f.signUpErr != nil {
		return "", f.signUpErr
	}
	if f.id == "" {
		f.id = uuid.NewString()
	}
	return f.id, nil
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &Session{AccessToken: "token-" + f.id, ExpiresIn: 3600}, nil
}

func (f *fakeIdentity) ResetPasswordForEmail(ctx context.Context, email string) error {
	return f.recoverErr
}

func (f *fakeIdentity) UpdatePassword(ctx context.Context, accessToken, newPassword string) error {
	f.updateCalls++
	return f.updateErr
}

func (f *fakeIdentity) SignOut(ctx context.Context, accessToken string) error { return nil }

func (f *fakeIdentity) GetUser(ctx context.Context, accessToken string) (string, error) {
	return f.getUserID, nil
}

// fakeRanker returns a canned rank.
type fakeRanker struct {
	rank int64
	ok   bool
	err  error
}

func (f *fakeRanker) Rank(ctx context.Context, userID string) (int64, bool, error) {
	return f.rank, f.ok, f.err
}

var errAlreadyRegistered = errors.New("User already registered")

func timePtr(tm time.Time) *time.Time { return &tm }
