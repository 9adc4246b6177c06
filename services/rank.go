// services/rank.go
package services

import (
	"context"
	"errors"
	"os"

	"github.com/redis/go-redis/v9"
)

const DefaultLeaderboardKey = "leaderboard:points"

// LeaderboardRanker reads ordinal ranks from the Redis sorted set the
// leaderboard sync worker maintains (score = points, highest first).
type LeaderboardRanker struct {
	RDB *redis.Client
	Key string
}

func NewLeaderboardRanker(rdb *redis.Client) *LeaderboardRanker {
	key := os.Getenv("LEADERBOARD_KEY")
	if key == "" {
		key = DefaultLeaderboardKey
	}
	return &LeaderboardRanker{RDB: rdb, Key: key}
}

// Rank returns the 1-based position of userID by descending points.
// ok=false when the user is not on the board yet.
func (r *LeaderboardRanker) Rank(ctx context.Context, userID string) (int64, bool, error) {
	pos, err := r.RDB.ZRevRank(ctx, r.Key, userID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return pos + 1, true, nil
}
