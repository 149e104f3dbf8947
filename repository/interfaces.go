package repository

import (
	"context"

	"github.com/faceattend/attendbackend/database"
	"github.com/faceattend/attendbackend/models"
)

// IdentityRepositoryInterface defines the methods for enrolled identity data
// operations
type IdentityRepositoryInterface interface {
	Enroll(ctx context.Context, name string, embedding []float32, photoPath *string) (*models.Identity, error)
	Remove(ctx context.Context, id uint) (bool, error)
	ListAll(ctx context.Context) ([]models.Identity, error)
	ListWithEmbeddings(ctx context.Context) ([]models.Identity, error)
	GetByID(ctx context.Context, id uint) (*models.Identity, error)
	Dimension() int
}

// EventRepositoryInterface defines the methods for attendance event data
// operations
type EventRepositoryInterface interface {
	Create(ctx context.Context, event *models.AttendanceEvent) error
	List(ctx context.Context, filter database.EventFilter) ([]models.AttendanceEvent, error)
}

// SettingsRepositoryInterface defines the methods for persisted configuration
// values
type SettingsRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
