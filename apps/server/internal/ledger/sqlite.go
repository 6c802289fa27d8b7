package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "mahjong_local.db"

type SQLiteService struct {
	db *sql.DB
}

// NewSQLiteService opens (and if needed creates) the local database. An
// empty path falls back to the per-user config directory.
func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dbPath = filepath.Join(userConfigDir, "MahjongLite", defaultLocalDBName)
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteService{db: db}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) RecordGame(ctx context.Context, rec GameRecord) error {
	if err := validateRecord(&rec); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	playedAtMs := rec.PlayedAt.UTC().UnixMilli()
	nowMs := time.Now().UTC().UnixMilli()
	if _, err := tx.ExecContext(ctx, `
INSERT INTO games (
    game_id, table_id, round, status, winner_seat, win_kind, total_payout, played_at_ms, created_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id) DO UPDATE
SET
    status = excluded.status,
    winner_seat = excluded.winner_seat,
    win_kind = excluded.win_kind,
    total_payout = excluded.total_payout,
    played_at_ms = excluded.played_at_ms
`, rec.GameID, rec.TableID, rec.Round, rec.Status, rec.WinnerSeat, rec.WinKind, rec.TotalPayout, playedAtMs, nowMs); err != nil {
		return err
	}

	for _, seat := range rec.Seats {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO game_seats (game_id, seat, user_id, nickname, robot)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (game_id, seat) DO UPDATE
SET user_id = excluded.user_id,
    nickname = excluded.nickname,
    robot = excluded.robot
`, rec.GameID, seat.Seat, int64(seat.UserID), seat.Nickname, boolToInt(seat.Robot)); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM game_ambitions WHERE game_id = ?`, rec.GameID); err != nil {
		return err
	}
	for _, amb := range rec.Ambitions {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO game_ambitions (game_id, seat, kind, payout)
VALUES (?, ?, ?, ?)
`, rec.GameID, amb.Seat, amb.Kind, amb.Payout); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]GameRecord, error) {
	limit = clampLimit(limit)
	if ctx == nil {
		ctx = context.Background()
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT game_id, table_id, round, status, winner_seat, win_kind, total_payout, played_at_ms
FROM games
ORDER BY played_at_ms DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]GameRecord, 0, limit)
	for rows.Next() {
		var rec GameRecord
		var playedAtMs int64
		if err := rows.Scan(&rec.GameID, &rec.TableID, &rec.Round, &rec.Status, &rec.WinnerSeat, &rec.WinKind, &rec.TotalPayout, &playedAtMs); err != nil {
			return nil, err
		}
		rec.PlayedAt = time.UnixMilli(playedAtMs).UTC()
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *SQLiteService) GetGame(ctx context.Context, gameID string) (*GameRecord, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, ErrNotFound
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var rec GameRecord
	var playedAtMs int64
	err := s.db.QueryRowContext(ctx, `
SELECT game_id, table_id, round, status, winner_seat, win_kind, total_payout, played_at_ms
FROM games
WHERE game_id = ?
`, gameID).Scan(&rec.GameID, &rec.TableID, &rec.Round, &rec.Status, &rec.WinnerSeat, &rec.WinKind, &rec.TotalPayout, &playedAtMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	rec.PlayedAt = time.UnixMilli(playedAtMs).UTC()

	seatRows, err := s.db.QueryContext(ctx, `
SELECT seat, user_id, nickname, robot
FROM game_seats
WHERE game_id = ?
ORDER BY seat ASC
`, gameID)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()
	for seatRows.Next() {
		var seat SeatResult
		var userID int64
		var robot int64
		if err := seatRows.Scan(&seat.Seat, &userID, &seat.Nickname, &robot); err != nil {
			return nil, err
		}
		seat.UserID = uint64(userID)
		seat.Robot = robot == 1
		rec.Seats = append(rec.Seats, seat)
	}
	if err := seatRows.Err(); err != nil {
		return nil, err
	}

	ambRows, err := s.db.QueryContext(ctx, `
SELECT seat, kind, payout
FROM game_ambitions
WHERE game_id = ?
ORDER BY id ASC
`, gameID)
	if err != nil {
		return nil, err
	}
	defer ambRows.Close()
	for ambRows.Next() {
		var amb AmbitionEntry
		if err := ambRows.Scan(&amb.Seat, &amb.Kind, &amb.Payout); err != nil {
			return nil, err
		}
		rec.Ambitions = append(rec.Ambitions, amb)
	}
	if err := ambRows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS games (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id TEXT NOT NULL UNIQUE,
    table_id TEXT NOT NULL,
    round INTEGER NOT NULL,
    status TEXT NOT NULL,
    winner_seat INTEGER NOT NULL DEFAULT -1,
    win_kind TEXT NOT NULL DEFAULT '',
    total_payout REAL NOT NULL DEFAULT 0,
    played_at_ms INTEGER NOT NULL,
    created_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_games_played_at ON games(played_at_ms DESC)`,
		`
CREATE TABLE IF NOT EXISTS game_seats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id TEXT NOT NULL,
    seat INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    nickname TEXT NOT NULL DEFAULT '',
    robot INTEGER NOT NULL DEFAULT 0,
    UNIQUE (game_id, seat)
)`,
		`
CREATE TABLE IF NOT EXISTS game_ambitions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    game_id TEXT NOT NULL,
    seat INTEGER NOT NULL,
    kind TEXT NOT NULL,
    payout REAL NOT NULL DEFAULT 0
)`,
		`CREATE INDEX IF NOT EXISTS idx_game_ambitions_game ON game_ambitions(game_id)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure ledger schema: %w", err)
		}
	}
	return nil
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
