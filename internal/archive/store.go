// Package archive persists finished games: a Redis record with a TTL
// for recent-game lookups, and an optional Postgres row for the
// permanent result log.
package archive

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/match"
)

const recordTTL = 24 * time.Hour

// Store writes finished games to Redis and, when a repository is
// attached, to Postgres. It implements the server's Archiver.
type Store struct {
	rdb  *redis.Client
	repo *Repository
	log  *zap.Logger
}

func NewStore(rdb *redis.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{rdb: rdb, log: log}
}

// AttachRepository enables the Postgres result log.
func (s *Store) AttachRepository(repo *Repository) { s.repo = repo }

func (s *Store) keyGame(id string) string  { return "arena:game:" + id }
func (s *Store) keyPlayer(u string) string { return "arena:player:" + u + ":games" }
func (s *Store) keyRecent() string         { return "arena:games:recent" }

// Archive stores the record under the game key and indexes it for both
// players. Redis failure is the caller's to log; the Postgres leg only
// warns so a database outage cannot lose the Redis copy.
func (s *Store) Archive(ctx context.Context, rec *match.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.keyGame(rec.GameID), raw, recordTTL).Err(); err != nil {
		return err
	}
	for _, u := range []string{rec.White, rec.Black} {
		if u == "" {
			continue
		}
		if err := s.rdb.LPush(ctx, s.keyPlayer(u), rec.GameID).Err(); err != nil {
			return err
		}
		_ = s.rdb.LTrim(ctx, s.keyPlayer(u), 0, 49).Err()
		_ = s.rdb.Expire(ctx, s.keyPlayer(u), recordTTL).Err()
	}
	if err := s.rdb.LPush(ctx, s.keyRecent(), rec.GameID).Err(); err != nil {
		return err
	}
	_ = s.rdb.LTrim(ctx, s.keyRecent(), 0, 99).Err()
	_ = s.rdb.Expire(ctx, s.keyRecent(), recordTTL).Err()

	if s.repo != nil {
		if err := s.repo.InsertResult(ctx, rec); err != nil {
			s.log.Warn("result_insert_failed", zap.String("game_id", rec.GameID), zap.Error(err))
		}
	}
	return nil
}

// Load fetches one archived record, nil when expired or unknown.
func (s *Store) Load(ctx context.Context, gameID string) (*match.Record, error) {
	raw, err := s.rdb.Get(ctx, s.keyGame(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec match.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecentByPlayer lists a player's archived games, newest first. Expired
// records are skipped.
func (s *Store) RecentByPlayer(ctx context.Context, username string, limit int) ([]*match.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.rdb.LRange(ctx, s.keyPlayer(username), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]*match.Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out, nil
}
