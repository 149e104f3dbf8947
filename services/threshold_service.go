package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/models"
	"github.com/faceattend/attendbackend/repository"
)

// ThresholdService owns the match acceptance threshold: a single mutable
// value in [0, 1], cached in memory and persisted through the settings
// repository so it survives process restarts.
type ThresholdService struct {
	settingsRepo repository.SettingsRepositoryInterface
	timeout      time.Duration

	mu      sync.RWMutex
	current float64
}

// NewThresholdService creates a threshold service starting at the default
// value; call Load to pick up a persisted override
func NewThresholdService(settingsRepo repository.SettingsRepositoryInterface, defaultThreshold float64, timeout time.Duration) *ThresholdService {
	return &ThresholdService{
		settingsRepo: settingsRepo,
		timeout:      timeout,
		current:      defaultThreshold,
	}
}

// Load replaces the default with the persisted override, if one exists
func (s *ThresholdService) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	value, err := s.settingsRepo.Get(ctx, models.SettingSimilarityThreshold)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil // no override persisted yet, keep the default
		}
		return fmt.Errorf("failed to load similarity threshold: %w", err)
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 || parsed > 1 {
		log.Printf("settings: ignoring invalid persisted threshold %q", value)
		return nil
	}

	s.mu.Lock()
	s.current = parsed
	s.mu.Unlock()
	return nil
}

// Get returns the threshold currently in effect
func (s *ThresholdService) Get() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set validates, persists, and applies a new threshold. The new value is
// observed by subsequent identifications only; already-recorded events keep
// the threshold that was in effect when they were decided.
func (s *ThresholdService) Set(ctx context.Context, value float64) error {
	if value < 0 || value > 1 {
		return fmt.Errorf("%w: threshold %g is outside [0, 1]", apperrors.ErrInvalidInput, value)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	formatted := strconv.FormatFloat(value, 'f', -1, 64)
	if err := s.settingsRepo.Set(ctx, models.SettingSimilarityThreshold, formatted); err != nil {
		return fmt.Errorf("failed to persist similarity threshold: %w", err)
	}

	s.mu.Lock()
	s.current = value
	s.mu.Unlock()
	return nil
}
