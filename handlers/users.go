package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/media"
	"github.com/faceattend/attendbackend/models"
	"github.com/faceattend/attendbackend/repository"
	"github.com/faceattend/attendbackend/utils"
)

const (
	maxUploadBytes = 16 << 20 // 16 MiB
	maxPhotoSide   = 1600
)

// UserHandler exposes identity enrollment, lookup, and removal
type UserHandler struct {
	Identities repository.IdentityRepositoryInterface
	Extractor  *media.FaceExtractor
	Photos     *media.PhotoStore
}

// ListUsers returns all enrolled identities without their embeddings
func (uh *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identities, err := uh.Identities.ListAll(r.Context())
	if err != nil {
		log.Printf("Error listing identities: %v", err)
		writeServiceError(w, err)
		return
	}
	if identities == nil {
		identities = []models.Identity{}
	}
	writeJSON(w, http.StatusOK, identities)
}

// CreateUser enrolls a new identity from a multipart photo upload
func (uh *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !uh.Extractor.Enabled() {
		WriteAPIError(w, http.StatusServiceUnavailable, "extractor_unavailable",
			"face extraction models are not loaded; enroll with a raw embedding instead")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form: "+err.Error())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "missing required field: name")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "missing required field: file")
		return
	}
	defer file.Close()

	if !utils.IsRasterImage(header.Filename) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "unsupported image type")
		return
	}

	contents, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "failed to read upload")
		return
	}

	normalized, err := normalizePhoto(contents)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_image", "could not decode image")
		return
	}

	embedding, err := uh.Extractor.Extract(normalized)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrNoFace):
			WriteAPIError(w, http.StatusBadRequest, "no_face", "no face detected in image")
		case errors.Is(err, media.ErrInvalidImage):
			WriteAPIError(w, http.StatusBadRequest, "invalid_image", "could not decode image")
		default:
			log.Printf("Error extracting embedding for %s: %v", name, err)
			WriteAPIError(w, http.StatusInternalServerError, "extraction_failed", "face extraction failed")
		}
		return
	}

	filename := utils.PhotoFilename(name, ".jpg")
	photoPath, err := uh.Photos.Save(filename, bytes.NewReader(normalized))
	if err != nil {
		log.Printf("Error saving photo for %s: %v", name, err)
		WriteAPIError(w, http.StatusInternalServerError, "photo_save_failed", "failed to store reference photo")
		return
	}

	identity, err := uh.Identities.Enroll(r.Context(), name, embedding, &photoPath)
	if err != nil {
		if delErr := uh.Photos.Delete(photoPath); delErr != nil {
			log.Printf("Warning: failed to clean up photo %s: %v", photoPath, delErr)
		}
		writeServiceError(w, err)
		return
	}

	log.Printf("Enrolled identity %s (ID: %d)", identity.Name, identity.ID)
	writeJSON(w, http.StatusCreated, identity)
}

// CreateUserFromVector enrolls a new identity from a raw embedding, for
// clients that extract client-side
func (uh *UserHandler) CreateUserFromVector(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string    `json:"name"`
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}

	identity, err := uh.Identities.Enroll(r.Context(), req.Name, req.Embedding, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Printf("Enrolled identity %s (ID: %d) from raw embedding", identity.Name, identity.ID)
	writeJSON(w, http.StatusCreated, identity)
}

// DeleteUser removes an identity and its reference photo
func (uh *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "user_id")
	userID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "invalid user ID format")
		return
	}

	// fetch first so the photo path is known before the row goes away
	identity, err := uh.Identities.GetByID(r.Context(), uint(userID))
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		writeServiceError(w, err)
		return
	}

	removed, err := uh.Identities.Remove(r.Context(), uint(userID))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !removed {
		WriteAPIError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}

	if identity != nil && identity.PhotoPath != nil {
		if err := uh.Photos.Delete(*identity.PhotoPath); err != nil {
			log.Printf("Warning: failed to delete photo for identity %d: %v", userID, err)
		}
	}

	log.Printf("Deleted identity ID: %d", userID)
	writeJSON(w, http.StatusNoContent, nil)
}

// GetUserFeature returns the stored embedding for client-side 1:1 matching
func (uh *UserHandler) GetUserFeature(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "user_id")
	userID, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "invalid user ID format")
		return
	}

	identity, err := uh.Identities.GetByID(r.Context(), uint(userID))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": identity.ID,
		"name":    identity.Name,
		"feature": identity.GetEmbedding(),
	})
}

// normalizePhoto decodes the upload, fixes EXIF orientation, bounds the
// longest side, and re-encodes as JPEG so stored photos and extractor input
// share one canonical form
func normalizePhoto(contents []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(contents), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxPhotoSide || bounds.Dy() > maxPhotoSide {
		img = imaging.Fit(img, maxPhotoSide, maxPhotoSide, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
