package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/faceattend/attendbackend/apperrors"
	"github.com/faceattend/attendbackend/database"
	"github.com/faceattend/attendbackend/models"
	"github.com/faceattend/attendbackend/services"
)

const maxLogPageSize = 500

// AttendanceHandler exposes attendance recording and the audit log
type AttendanceHandler struct {
	Attendance *services.AttendanceService
	Recognizer *services.RecognitionService
	Threshold  *services.ThresholdService
}

// CheckIn runs the full pipeline: identify the embedding, then record the
// outcome under the supplied (or server-generated) idempotency token
func (ah *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID   string    `json:"event_id"`
		Embedding []float32 `json:"embedding"`
		Latitude  *float64  `json:"latitude"`
		Longitude *float64  `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}

	match, err := ah.Recognizer.Identify(r.Context(), req.Embedding)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	eventID := strings.TrimSpace(req.EventID)
	if eventID == "" {
		eventID = uuid.NewString()
	}

	status := models.StatusUnknown
	identityID := ""
	if match.IdentityID != 0 {
		identityID = strconv.FormatUint(uint64(match.IdentityID), 10)
		if match.Accepted {
			status = models.StatusSuccess
		} else {
			status = models.StatusFail
		}
	}

	event, err := ah.Attendance.Record(r.Context(), services.RecordInput{
		EventID:      eventID,
		IdentityID:   identityID,
		IdentityName: match.Name,
		Score:        match.Score,
		Threshold:    match.Threshold,
		Status:       status,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEvent) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"duplicate": true, "event_id": eventID, "match": match})
			return
		}
		writeServiceError(w, err)
		return
	}

	log.Printf("Check-in: event=%s identity=%s score=%.4f status=%s", event.EventID, event.IdentityID, event.Score, event.Status)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"event": event, "match": match})
}

// Report records an outcome computed by the client. The threshold defaults
// to the one currently in effect when the client omits it.
func (ah *AttendanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EventID   string   `json:"event_id"`
		UserID    string   `json:"user_id"`
		UserName  string   `json:"user_name"`
		Score     float64  `json:"score"`
		Threshold *float64 `json:"threshold"`
		Status    string   `json:"status"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}

	threshold := ah.Threshold.Get()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	event, err := ah.Attendance.Record(r.Context(), services.RecordInput{
		EventID:      req.EventID,
		IdentityID:   req.UserID,
		IdentityName: req.UserName,
		Score:        req.Score,
		Threshold:    threshold,
		Status:       req.Status,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEvent) {
			writeJSON(w, http.StatusOK, map[string]interface{}{"duplicate": true, "event_id": req.EventID})
			return
		}
		writeServiceError(w, err)
		return
	}

	log.Printf("Report: event=%s user=%s score=%.4f status=%s", event.EventID, event.IdentityID, event.Score, event.Status)
	writeJSON(w, http.StatusCreated, event)
}

// ListLogs returns attendance events newest first with optional filters
func (ah *AttendanceHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := parseUintQuery(r, "limit", 100)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "limit must be a non-negative integer")
		return
	}
	offset, err := parseUintQuery(r, "offset", 0)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "offset must be a non-negative integer")
		return
	}
	if limit > maxLogPageSize {
		limit = maxLogPageSize
	}

	filter := database.EventFilter{
		Status:     r.URL.Query().Get("status"),
		IdentityID: r.URL.Query().Get("identity_id"),
		Limit:      limit,
		Offset:     offset,
	}
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "unknown status filter")
		return
	}

	events, err := ah.Attendance.ListEvents(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func parseUintQuery(r *http.Request, key string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseUint(raw, 10, 32)
}
