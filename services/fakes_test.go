package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/database"
	"github.com/faceattend/attendbackend/models"
	"github.com/faceattend/attendbackend/repository"
)

// fakeIdentityRepo is an in-memory IdentityRepositoryInterface for service
// tests
type fakeIdentityRepo struct {
	dim        int
	nextID     uint
	identities []models.Identity
}

func newFakeIdentityRepo(dim int) *fakeIdentityRepo {
	return &fakeIdentityRepo{dim: dim, nextID: 1}
}

func (f *fakeIdentityRepo) Dimension() int {
	return f.dim
}

func (f *fakeIdentityRepo) Enroll(ctx context.Context, name string, embedding []float32, photoPath *string) (*models.Identity, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrInvalidInput)
	}
	if err := repository.ValidateEmbedding(embedding, f.dim); err != nil {
		return nil, err
	}

	identity := models.Identity{
		ID:        f.nextID,
		Name:      name,
		PhotoPath: photoPath,
		CreatedAt: time.Now().Unix(),
	}
	identity.SetEmbedding(embedding)
	f.nextID++
	f.identities = append(f.identities, identity)
	return &identity, nil
}

func (f *fakeIdentityRepo) Remove(ctx context.Context, id uint) (bool, error) {
	for i, identity := range f.identities {
		if identity.ID == id {
			f.identities = append(f.identities[:i], f.identities[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeIdentityRepo) ListAll(ctx context.Context) ([]models.Identity, error) {
	out := make([]models.Identity, len(f.identities))
	for i, identity := range f.identities {
		identity.EmbeddingData = nil
		out[i] = identity
	}
	return out, nil
}

func (f *fakeIdentityRepo) ListWithEmbeddings(ctx context.Context) ([]models.Identity, error) {
	out := make([]models.Identity, len(f.identities))
	copy(out, f.identities)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeIdentityRepo) GetByID(ctx context.Context, id uint) (*models.Identity, error) {
	for _, identity := range f.identities {
		if identity.ID == id {
			found := identity
			return &found, nil
		}
	}
	return nil, fmt.Errorf("identity ID %d: %w", id, apperrors.ErrNotFound)
}

// fakeEventRepo is an in-memory EventRepositoryInterface enforcing event_id
// uniqueness like the sqlite UNIQUE index does
type fakeEventRepo struct {
	nextID    uint
	events    []models.AttendanceEvent
	byEventID map[string]bool
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{nextID: 1, byEventID: map[string]bool{}}
}

func (f *fakeEventRepo) Create(ctx context.Context, event *models.AttendanceEvent) error {
	if f.byEventID[event.EventID] {
		return fmt.Errorf("event %s: %w", event.EventID, apperrors.ErrDuplicateEvent)
	}
	event.ID = f.nextID
	f.nextID++
	f.byEventID[event.EventID] = true
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter database.EventFilter) ([]models.AttendanceEvent, error) {
	var matched []models.AttendanceEvent
	for _, ev := range f.events {
		if filter.Status != "" && ev.Status != filter.Status {
			continue
		}
		if filter.IdentityID != "" && ev.IdentityID != filter.IdentityID {
			continue
		}
		if filter.Since > 0 && ev.Timestamp < filter.Since {
			continue
		}
		if filter.Until > 0 && ev.Timestamp > filter.Until {
			continue
		}
		matched = append(matched, ev)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Timestamp != matched[j].Timestamp {
			return matched[i].Timestamp > matched[j].Timestamp
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= uint64(len(matched)) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && uint64(len(matched)) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// fakeSettingsRepo is an in-memory SettingsRepositoryInterface
type fakeSettingsRepo struct {
	values map[string]string
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{values: map[string]string{}}
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("setting %s: %w", key, apperrors.ErrNotFound)
	}
	return value, nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}
