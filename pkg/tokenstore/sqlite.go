package tokenstore

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// storedToken is the single-row key/value schema backing the durable store.
type storedToken struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (storedToken) TableName() string { return "tokens" }

// SQLite persists the access token in a local sqlite file, the CLI analogue
// of the browser's durable key/value storage. The Store contract has no error
// channel, so I/O failures are logged and degrade to "absent".
type SQLite struct {
	db  *gorm.DB
	log *slog.Logger
}

func OpenSQLite(path string, log *slog.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("token db path is empty")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open token db: %w", err)
	}
	if err := db.AutoMigrate(&storedToken{}); err != nil {
		return nil, fmt.Errorf("migrate token db: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &SQLite{db: db, log: log}, nil
}

func (s *SQLite) Get() (string, bool) {
	var row storedToken
	err := s.db.First(&row, "key = ?", AccessTokenKey).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("token store read failed", "error", err)
		}
		return "", false
	}
	return row.Value, true
}

func (s *SQLite) Set(token string) {
	row := storedToken{Key: AccessTokenKey, Value: token}
	if err := s.db.Save(&row).Error; err != nil {
		s.log.Error("token store write failed", "error", err)
	}
}

func (s *SQLite) Clear() {
	if err := s.db.Delete(&storedToken{}, "key = ?", AccessTokenKey).Error; err != nil {
		s.log.Error("token store clear failed", "error", err)
	}
}

func (s *SQLite) IsPresent() bool {
	_, ok := s.Get()
	return ok
}
