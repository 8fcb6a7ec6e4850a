// Package worklist persists work-in-progress items in a local SQLite
// database.
package worklist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/charliek/wip/internal/domain"
)

const (
	maxRetries = 3
	retryDelay = 50 * time.Millisecond
)

// itemRecord is the gorm model backing work items.
type itemRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Description string `gorm:"not null"`
	Status      string `gorm:"not null;default:open;index"`
	Repo        string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func (itemRecord) TableName() string {
	return "items"
}

func (r itemRecord) toItem() domain.Item {
	return domain.Item{
		ID:          r.ID,
		Description: r.Description,
		Status:      r.Status,
		Repo:        r.Repo,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

// Store provides persistent access to work items.
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if needed) the worklist database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	path, err := expandPath(dbPath)
	if err != nil {
		return nil, domain.Errorf(domain.ErrStorageError, "resolve database path: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, domain.Errorf(domain.ErrStorageError, "create database directory: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt: false,
		NowFunc:     func() time.Time { return time.Now().UTC() },
		Logger:      newGormLogger(),
	})
	if err != nil {
		return nil, domain.Errorf(domain.ErrStorageError, "open database: %v", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, domain.Errorf(domain.ErrStorageError, "apply %s: %v", pragma, err)
		}
	}

	if err := db.AutoMigrate(&itemRecord{}); err != nil {
		return nil, domain.Errorf(domain.ErrStorageError, "migrate schema: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, domain.Errorf(domain.ErrStorageError, "access connection pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Add creates an open item. repo may be empty for items not tied to a
// repository.
func (s *Store) Add(ctx context.Context, description, repo string) (domain.Item, error) {
	record := itemRecord{
		Description: description,
		Status:      domain.ItemOpen,
		Repo:        repo,
	}
	err := withRetry(func() error {
		return s.db.WithContext(ctx).Create(&record).Error
	})
	if err != nil {
		return domain.Item{}, domain.Errorf(domain.ErrStorageError, "add item: %v", err)
	}
	return record.toItem(), nil
}

// Complete marks an open item done. A missing id and an already
// completed item are the same failure: there is nothing open to
// complete.
func (s *Store) Complete(ctx context.Context, id uint) (domain.Item, error) {
	var record itemRecord
	err := withRetry(func() error {
		return s.db.WithContext(ctx).
			Where("id = ? AND status = ?", id, domain.ItemOpen).
			First(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Item{}, domain.Errorf(domain.ErrItemNotFound, "item #%d", id)
		}
		return domain.Item{}, domain.Errorf(domain.ErrStorageError, "look up item #%d: %v", id, err)
	}

	now := time.Now().UTC()
	record.Status = domain.ItemDone
	record.CompletedAt = &now
	err = withRetry(func() error {
		return s.db.WithContext(ctx).Save(&record).Error
	})
	if err != nil {
		return domain.Item{}, domain.Errorf(domain.ErrStorageError, "complete item #%d: %v", id, err)
	}
	return record.toItem(), nil
}

// Items returns items ordered by id, open ones only unless includeDone.
func (s *Store) Items(ctx context.Context, includeDone bool) ([]domain.Item, error) {
	var records []itemRecord
	err := withRetry(func() error {
		q := s.db.WithContext(ctx).Order("id ASC")
		if !includeDone {
			q = q.Where("status = ?", domain.ItemOpen)
		}
		return q.Find(&records).Error
	})
	if err != nil {
		return nil, domain.Errorf(domain.ErrStorageError, "list items: %v", err)
	}

	items := make([]domain.Item, 0, len(records))
	for _, r := range records {
		items = append(items, r.toItem())
	}
	return items, nil
}

// ItemsForRepo returns open items attached to repoPath. Paths are
// compared with symlinks resolved so items attached through a linked
// checkout still match.
func (s *Store) ItemsForRepo(ctx context.Context, repoPath string) ([]domain.Item, error) {
	all, err := s.Items(ctx, false)
	if err != nil {
		return nil, err
	}

	want := canonicalPath(repoPath)
	var items []domain.Item
	for _, item := range all {
		if item.Repo == "" {
			continue
		}
		if canonicalPath(item.Repo) == want {
			items = append(items, item)
		}
	}
	return items, nil
}

// withRetry retries fn while SQLite reports the database as busy or
// locked, backing off linearly.
func withRetry(fn func() error) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		var sqliteErr sqlite3.Error
		if !errors.As(err, &sqliteErr) {
			return err
		}
		if sqliteErr.Code != sqlite3.ErrBusy && sqliteErr.Code != sqlite3.ErrLocked {
			return err
		}
		time.Sleep(retryDelay * time.Duration(i+1))
	}
	return err
}

// canonicalPath resolves symlinks for comparison, falling back to the
// cleaned absolute path when resolution fails.
func canonicalPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// expandPath resolves a leading ~ to the home directory.
func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
