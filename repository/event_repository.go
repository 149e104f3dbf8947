package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/database"
	"github.com/faceattend/attendbackend/models"
)

// EventRepository handles database operations for AttendanceEvent entities
type EventRepository struct {
	DB    *gorm.DB
	sqlDB *sql.DB
}

// Ensure EventRepository implements EventRepositoryInterface
var _ EventRepositoryInterface = (*EventRepository)(nil)

// NewEventRepository creates a new instance of EventRepository. It keeps the
// raw sql.DB handle for the squirrel-built listing query.
func NewEventRepository(db *gorm.DB) (*EventRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return &EventRepository{DB: db, sqlDB: sqlDB}, nil
}

// Create persists exactly one attendance event row. Idempotency is enforced
// by the unique constraint on event_id at the storage layer, so concurrent
// writers and multiple process instances cannot produce a second row for the
// same token.
func (r *EventRepository) Create(ctx context.Context, event *models.AttendanceEvent) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	err := r.DB.WithContext(ctx).Create(event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("event %s: %w", event.EventID, apperrors.ErrDuplicateEvent)
		}
		return storageError(fmt.Sprintf("failed to create attendance event %s", event.EventID), err)
	}
	return nil
}

// List returns attendance events newest first, narrowed by the filter
func (r *EventRepository) List(ctx context.Context, filter database.EventFilter) ([]models.AttendanceEvent, error) {
	events, err := database.ListEvents(ctx, r.sqlDB, filter)
	if err != nil {
		return nil, storageError("failed to list attendance events", err)
	}
	return events, nil
}
