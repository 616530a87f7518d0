package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
	"github.com/LambdaTest/coverage-extractor/pkg/utils"
	"github.com/cenkalti/backoff/v4"
	"gorm.io/gorm"
)

type store struct {
	db         *gorm.DB
	logger     lumber.Logger
	newBackOff func() backoff.BackOff
}

// New returns a HistoryStore backed by db
func New(db *gorm.DB, logger lumber.Logger) core.HistoryStore {
	return &store{
		db:         db,
		logger:     logger,
		newBackOff: lockedBackOff,
	}
}

// Open connects to dsn and returns a HistoryStore over it
func Open(dsn string, debug bool, logger lumber.Logger) (core.HistoryStore, error) {
	db, err := Connect(dsn, debug, logger)
	if err != nil {
		return nil, err
	}
	return New(db, logger), nil
}

func lockedBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxElapsedTime = global.DBLockedRetryWindow
	return b
}

// Record stores the entry, filling ID and CreatedAt when empty
func (s *store) Record(ctx context.Context, entry *core.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = utils.GenerateUUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	run, err := toRun(entry)
	if err != nil {
		return err
	}
	if err := s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).Create(run).Error
	}); err != nil {
		s.logger.Errorf("failed to record coverage run %s: %v", entry.ID, err)
		return err
	}
	s.logger.Debugf("recorded coverage run %s", entry.ID)
	return nil
}

// List returns at most limit entries, newest first
func (s *store) List(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	if limit <= 0 {
		limit = global.DefaultHistoryLimit
	}
	var runs []Run
	err := s.withRetry(ctx, func() error {
		return s.db.WithContext(ctx).
			Order("created_at desc").
			Order("id desc").
			Limit(limit).
			Find(&runs).Error
	})
	if err != nil {
		return nil, err
	}
	entries := make([]core.HistoryEntry, 0, len(runs))
	for i := range runs {
		entry, err := runs[i].toEntry()
		if err != nil {
			s.logger.Warnf("ignoring unreadable metadata of run %s: %v", runs[i].ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Prune deletes everything but the newest keep entries
func (s *store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	var deleted int64
	err := s.withRetry(ctx, func() error {
		var res *gorm.DB
		if keep == 0 {
			res = s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Run{})
		} else {
			newest := s.db.Model(&Run{}).Select("id").Order("created_at desc").Order("id desc").Limit(keep)
			res = s.db.WithContext(ctx).Where("id NOT IN (?)", newest).Delete(&Run{})
		}
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debugf("pruned %d coverage runs, kept %d", deleted, keep)
	return deleted, nil
}

// Close releases the underlying database
func (s *store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withRetry runs op again while SQLite reports the database as locked
func (s *store) withRetry(ctx context.Context, op func() error) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !isLocked(err) {
			return backoff.Permanent(err)
		}
		s.logger.Debugf("database is locked, attempt %d", attempt)
		return err
	}, backoff.WithContext(s.newBackOff(), ctx))
}

func isLocked(err error) bool {
	return strings.Contains(err.Error(), "database is locked")
}
