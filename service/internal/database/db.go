// Package database persists finished rounds and games to postgres.
package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// DB is the shared pool; nil when postgres is not configured.
var DB *pgxpool.Pool

// ErrNoPool is returned when postgres is not configured.
var ErrNoPool = errors.New("database pool not initialized")

// ConnectDB opens and pings a pool, storing it in DB.
func ConnectDB(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}
	DB = pool
	logrus.Info("connected to postgres")
	return nil
}

// Close releases the shared pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          UUID PRIMARY KEY,
	final_state JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	ended_at    TIMESTAMPTZ
);
CREATE TABLE IF NOT EXISTS round_results (
	game_id     UUID NOT NULL,
	round       INT  NOT NULL,
	player_id   UUID NOT NULL,
	seat        INT  NOT NULL,
	round_score INT  NOT NULL,
	total_score INT  NOT NULL,
	PRIMARY KEY (game_id, round, player_id)
);`

// Migrate creates the tables when missing.
func Migrate(ctx context.Context) error {
	if DB == nil {
		return ErrNoPool
	}
	if _, err := DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// PlayerRoundResult is one seat's outcome of a finished round.
type PlayerRoundResult struct {
	PlayerID   uuid.UUID
	Seat       int
	RoundScore int
	TotalScore int
}

var roundColumns = []string{"game_id", "round", "player_id", "seat", "round_score", "total_score"}

func roundRows(gameID uuid.UUID, round int, results []PlayerRoundResult) [][]any {
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{gameID, round, r.PlayerID, r.Seat, r.RoundScore, r.TotalScore})
	}
	return rows
}

// RecordRoundResult stores every seat's score for a finished round. The game
// row is created on first use.
func RecordRoundResult(ctx context.Context, gameID uuid.UUID, round int, results []PlayerRoundResult) error {
	if DB == nil {
		return ErrNoPool
	}
	return pgx.BeginFunc(ctx, DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO games (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, gameID); err != nil {
			return fmt.Errorf("ensure game row: %w", err)
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"round_results"}, roundColumns,
			pgx.CopyFromRows(roundRows(gameID, round, results)))
		if err != nil {
			return fmt.Errorf("copy round %d results: %w", round, err)
		}
		return nil
	})
}

// StoreFinalGameStateInDB upserts the finished game's final snapshot. Errors
// are logged; callers run it in the background.
func StoreFinalGameStateInDB(ctx context.Context, gameID uuid.UUID, snapshot map[string]interface{}) {
	log := logrus.WithField("game", gameID)
	if DB == nil {
		log.Debug("no database; final state not stored")
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.WithError(err).Error("marshal final game state")
		return
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO games (id, final_state, ended_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET final_state = EXCLUDED.final_state, ended_at = EXCLUDED.ended_at`,
		gameID, data)
	if err != nil {
		log.WithError(err).Error("store final game state")
		return
	}
	log.Info("final game state stored")
}
