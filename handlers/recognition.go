package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/faceattend/attendbackend/services"
)

// RecognitionHandler exposes identity matching
type RecognitionHandler struct {
	Recognizer *services.RecognitionService
}

// Identify matches a query embedding against all enrolled identities and
// returns the best match with its acceptance decision
func (rh *RecognitionHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}

	match, err := rh.Recognizer.Identify(r.Context(), req.Embedding)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, match)
}
