package archive

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/park285/chess-arena/internal/match"
)

// Repository is the permanent Postgres result log. One row per finished
// game; replays of the same game id are ignored.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open connects and pings.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func (r *Repository) InsertResult(ctx context.Context, rec *match.Record) error {
	if rec == nil {
		return fmt.Errorf("nil record")
	}
	const query = `
		INSERT INTO arena_games (
			game_id,
			room_id,
			white_player,
			black_player,
			result,
			reason,
			move_count,
			final_fen
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (game_id) DO NOTHING`

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.GameID,
		rec.RoomID,
		rec.White,
		rec.Black,
		rec.Result,
		rec.Reason,
		rec.Moves,
		rec.Final,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ResultsByPlayer returns a player's stored results, newest first.
func (r *Repository) ResultsByPlayer(ctx context.Context, username string, limit int) ([]*match.Record, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT game_id, room_id, white_player, black_player, result, reason, move_count, final_fen
		FROM arena_games
		WHERE white_player = $1 OR black_player = $1
		ORDER BY id DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []*match.Record
	for rows.Next() {
		var rec match.Record
		if err := rows.Scan(&rec.GameID, &rec.RoomID, &rec.White, &rec.Black, &rec.Result, &rec.Reason, &rec.Moves, &rec.Final); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
