package psql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"nexus/nexus/chat"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const snapshotKey = "agent-chats"

// ChatSnapshot is the single-row persisted form of the chat collection.
type ChatSnapshot struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ChatSnapshot) TableName() string {
	return "chat_snapshots"
}

// SnapshotStore persists the snapshot in Postgres, upserting the one
// row on every save.
type SnapshotStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewSnapshotStore(db *Database, log *zap.Logger) *SnapshotStore {
	return &SnapshotStore{db: db.DB, log: log}
}

func (s *SnapshotStore) Load(ctx context.Context) (*chat.Snapshot, error) {
	var rec ChatSnapshot
	err := s.db.WithContext(ctx).First(&rec, "key = ?", snapshotKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap chat.Snapshot
	if err := json.Unmarshal(rec.Data, &snap); err != nil {
		s.log.Warn("corrupt chat snapshot row, starting fresh", zap.Error(err))
		return nil, nil
	}
	if len(snap.Sessions) == 0 {
		return nil, nil
	}
	return &snap, nil
}

func (s *SnapshotStore) Save(ctx context.Context, snap *chat.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	rec := ChatSnapshot{Key: snapshotKey, Data: data}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
}
