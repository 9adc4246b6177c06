package workers

import (
	"context"
	"log"
	"os"
	"time"

	"quiz-learning-system/models"
	"quiz-learning-system/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// LeaderboardSyncClient mirrors (user id, points) from the users table into
// the Redis sorted set the rank lookups read. Ranking stays eventually
// consistent: a stale board costs a slightly old rank on the profile page,
// nothing more.
type LeaderboardSyncClient struct {
	DB  *gorm.DB
	RDB *redis.Client
	Key string
}

func NewLeaderboardSyncClient(db *gorm.DB, rdb *redis.Client) *LeaderboardSyncClient {
	key := os.Getenv("LEADERBOARD_KEY")
	if key == "" {
		key = services.DefaultLeaderboardKey
	}
	return &LeaderboardSyncClient{DB: db, RDB: rdb, Key: key}
}

// SyncOnce pushes the current standings into the sorted set. Returns the
// number of members written.
func (c *LeaderboardSyncClient) SyncOnce(ctx context.Context) (int, error) {
	var users []struct {
		ID     string
		Points int64
	}
	if err := c.DB.WithContext(ctx).Model(&models.User{}).
		Select("id", "points").
		Find(&users).Error; err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, nil
	}

	members := make([]redis.Z, 0, len(users))
	for _, u := range users {
		members = append(members, redis.Z{Score: float64(u.Points), Member: u.ID})
	}

	if err := c.RDB.ZAdd(ctx, c.Key, members...).Err(); err != nil {
		return 0, err
	}
	return len(members), nil
}

// PollLeaderboard keeps the sorted set fresh until ctx is cancelled.
func PollLeaderboard(ctx context.Context, client *LeaderboardSyncClient, pollInterval time.Duration) {
	log.Println("🔁 Starting leaderboard sync (users → redis sorted set)…")

	if n, err := client.SyncOnce(ctx); err != nil {
		log.Printf("⚠️ Initial leaderboard sync failed: %v", err)
	} else {
		log.Printf("📊 Leaderboard primed with %d member(s)", n)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Leaderboard sync stopped")
			return
		case <-ticker.C:
			n, err := client.SyncOnce(ctx)
			if err != nil {
				log.Printf("❌ Leaderboard sync failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("📊 Leaderboard refreshed (%d member(s))", n)
			}
		}
	}
}
