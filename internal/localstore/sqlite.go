package localstore

import (
	"context"
	"fmt"

	"github.com/fandyandika/miqra/internal/model"
	"github.com/fandyandika/miqra/pkg/logger"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
create table if not exists pending_checkins(
	id integer primary key autoincrement,
	payload_json text not null,
	created_at integer not null
);
create table if not exists recent_checkins(
	user_id text not null,
	date text not null,
	ayat_count integer not null,
	primary key (user_id, date)
);`

type Config struct {
	Path string `yaml:"path"`
}

// SQLiteStore is the durable queue + recent-cache backing the offline
// check-in path. Every operation fails soft: the store sits under
// optimistic UI flows that must never see an error from here, so
// failures are logged and swallowed and callers get zero values.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() int64
}

// NewSQLite opens (or creates) the local database and applies the
// schema. Construction is the only path that reports errors; callers
// fall back to the in-memory store when it fails.
func NewSQLite(cfg Config, now func() int64) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return nil, errors.Wrapf(err, "close error: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize local schema: %w", err)
	}

	logger.Logger().Info("local database initialized", zap.String("path", cfg.Path))

	return &SQLiteStore{db: db, now: now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Enqueue(ctx context.Context, payload []byte) {
	query, args, err := squirrel.
		Insert("pending_checkins").
		Columns("payload_json", "created_at").
		Values(string(payload), s.now()).
		ToSql()
	if err != nil {
		logger.Logger().Error("failed to build enqueue query", zap.Error(err))
		return
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logger.Logger().Error("failed to enqueue pending check-in", zap.Error(err))
	}
}

func (s *SQLiteStore) PeekPending(ctx context.Context, limit int) []model.PendingCheckin {
	return s.selectPending(ctx, limit)
}

// PopPending returns the oldest pending entries without removing them;
// callers delete each entry after its remote write is confirmed.
// At-least-once: a crash between pop and delete replays the entry, which
// the idempotent remote upsert absorbs.
func (s *SQLiteStore) PopPending(ctx context.Context, limit int) []model.PendingCheckin {
	return s.selectPending(ctx, limit)
}

func (s *SQLiteStore) selectPending(ctx context.Context, limit int) []model.PendingCheckin {
	query, args, err := squirrel.
		Select("id", "payload_json", "created_at").
		From("pending_checkins").
		OrderBy("id asc").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		logger.Logger().Error("failed to build pending query", zap.Error(err))
		return nil
	}

	var rows []model.PendingCheckin
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.Logger().Error("failed to read pending check-ins", zap.Error(err))
		return nil
	}
	return rows
}

// DeletePending is a no-op for ids that do not exist.
func (s *SQLiteStore) DeletePending(ctx context.Context, id int64) {
	query, args, err := squirrel.
		Delete("pending_checkins").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Logger().Error("failed to build delete query", zap.Error(err))
		return
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		logger.Logger().Error("failed to delete pending check-in",
			zap.Int64("id", id), zap.Error(err))
	}
}

func (s *SQLiteStore) CountPending(ctx context.Context) int {
	var count int
	err := s.db.GetContext(ctx, &count, "select count(*) from pending_checkins")
	if err != nil {
		logger.Logger().Error("failed to count pending check-ins", zap.Error(err))
		return 0
	}
	return count
}

// CacheCheckin upserts into the recent cache; the latest write for a
// (user, date) pair wins.
func (s *SQLiteStore) CacheCheckin(ctx context.Context, userID, date string, ayatCount int) {
	_, err := s.db.ExecContext(ctx,
		"insert or replace into recent_checkins (user_id, date, ayat_count) values (?, ?, ?)",
		userID, date, ayatCount)
	if err != nil {
		logger.Logger().Error("failed to cache check-in",
			zap.String("user_id", userID), zap.String("date", date), zap.Error(err))
	}
}

func (s *SQLiteStore) RecentCheckins(ctx context.Context, userID string, days int) []model.RecentCheckin {
	query, args, err := squirrel.
		Select("user_id", "date", "ayat_count").
		From("recent_checkins").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date desc").
		Limit(uint64(days)).
		ToSql()
	if err != nil {
		logger.Logger().Error("failed to build recent query", zap.Error(err))
		return nil
	}

	var rows []model.RecentCheckin
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.Logger().Error("failed to read recent check-ins", zap.Error(err))
		return nil
	}
	return rows
}
