package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/database"
	"github.com/faceattend/attendbackend/models"
	"github.com/faceattend/attendbackend/repository"
)

// RecordInput carries one attendance outcome to be persisted
type RecordInput struct {
	EventID      string
	IdentityID   string
	IdentityName string
	Score        float64
	Threshold    float64
	Status       string
	Latitude     *float64
	Longitude    *float64
}

// AttendanceService writes deduplicated attendance events and serves the
// audit log
type AttendanceService struct {
	eventRepo repository.EventRepositoryInterface
	timeout   time.Duration
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(eventRepo repository.EventRepositoryInterface, timeout time.Duration) *AttendanceService {
	return &AttendanceService{eventRepo: eventRepo, timeout: timeout}
}

// Record persists exactly one event for the given event_id with a
// server-assigned timestamp. A repeated event_id surfaces
// apperrors.ErrDuplicateEvent and never creates a second row, so callers may
// retry the same token safely.
func (s *AttendanceService) Record(ctx context.Context, input RecordInput) (*models.AttendanceEvent, error) {
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event_id must not be empty", apperrors.ErrInvalidInput)
	}
	if !models.ValidStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidInput, input.Status)
	}

	event := &models.AttendanceEvent{
		EventID:      eventID,
		IdentityID:   input.IdentityID,
		IdentityName: input.IdentityName,
		Score:        input.Score,
		Threshold:    input.Threshold,
		Status:       input.Status,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Timestamp:    time.Now().Unix(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListEvents returns attendance events newest first
func (s *AttendanceService) ListEvents(ctx context.Context, filter database.EventFilter) ([]models.AttendanceEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []models.AttendanceEvent{}
	}
	return events, nil
}
