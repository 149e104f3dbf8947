package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/models"
)

// IdentityRepository handles database operations for enrolled identities.
// The embedding dimensionality is an explicit parameter of the store: every
// vector written to or compared against it must have exactly dim elements.
type IdentityRepository struct {
	DB  *gorm.DB
	dim int
}

// Ensure IdentityRepository implements IdentityRepositoryInterface
var _ IdentityRepositoryInterface = (*IdentityRepository)(nil)

// NewIdentityRepository creates a new instance of IdentityRepository
func NewIdentityRepository(db *gorm.DB, dim int) *IdentityRepository {
	return &IdentityRepository{DB: db, dim: dim}
}

// Dimension returns the embedding dimensionality the store was configured
// with
func (r *IdentityRepository) Dimension() int {
	return r.dim
}

// ValidateEmbedding checks a vector against the store's expected shape
func ValidateEmbedding(embedding []float32, dim int) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: embedding must not be empty", apperrors.ErrInvalidInput)
	}
	if len(embedding) != dim {
		return fmt.Errorf("%w: embedding has %d values, store dimension is %d", apperrors.ErrInvalidInput, len(embedding), dim)
	}
	for i, v := range embedding {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: embedding value at index %d is not finite", apperrors.ErrInvalidInput, i)
		}
	}
	return nil
}

// Enroll validates and persists a new identity with its embedding vector
func (r *IdentityRepository) Enroll(ctx context.Context, name string, embedding []float32, photoPath *string) (*models.Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperrors.ErrInvalidInput)
	}
	if err := ValidateEmbedding(embedding, r.dim); err != nil {
		return nil, err
	}

	identity := &models.Identity{
		Name:      name,
		PhotoPath: photoPath,
		CreatedAt: time.Now().Unix(),
	}
	identity.SetEmbedding(embedding)

	if err := r.DB.WithContext(ctx).Create(identity).Error; err != nil {
		return nil, storageError(fmt.Sprintf("failed to enroll identity %s", name), err)
	}
	return identity, nil
}

// Remove deletes the identity if present and reports whether a row was
// removed; deleting an absent id is not an error
func (r *IdentityRepository) Remove(ctx context.Context, id uint) (bool, error) {
	result := r.DB.WithContext(ctx).Delete(&models.Identity{}, id)
	if result.Error != nil {
		return false, storageError(fmt.Sprintf("failed to delete identity ID %d", id), result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ListAll retrieves all identities ordered by id, without their embeddings
func (r *IdentityRepository) ListAll(ctx context.Context) ([]models.Identity, error) {
	var identities []models.Identity
	err := r.DB.WithContext(ctx).
		Select("id", "name", "photo_path", "created_at").
		Order("id ASC").
		Find(&identities).Error
	if err != nil {
		return nil, storageError("failed to list identities", err)
	}
	return identities, nil
}

// ListWithEmbeddings retrieves all identities ordered by id, embeddings
// included, for the matching scan
func (r *IdentityRepository) ListWithEmbeddings(ctx context.Context) ([]models.Identity, error) {
	var identities []models.Identity
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&identities).Error
	if err != nil {
		return nil, storageError("failed to list identities with embeddings", err)
	}
	return identities, nil
}

// GetByID retrieves a single identity by its ID
func (r *IdentityRepository) GetByID(ctx context.Context, id uint) (*models.Identity, error) {
	var identity models.Identity
	err := r.DB.WithContext(ctx).First(&identity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("identity ID %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, storageError(fmt.Sprintf("failed to get identity by ID %d", id), err)
	}
	return &identity, nil
}
