package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/faceattend/attendbackend/services"
)

// SettingsHandler exposes the match acceptance threshold
type SettingsHandler struct {
	Threshold *services.ThresholdService
}

// GetThreshold returns the threshold currently in effect
func (sh *SettingsHandler) GetThreshold(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"similarity_threshold": sh.Threshold.Get()})
}

// PutThreshold validates and applies a new threshold; the change affects
// subsequent identifications only
func (sh *SettingsHandler) PutThreshold(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SimilarityThreshold *float64 `json:"similarity_threshold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "invalid request body: "+err.Error())
		return
	}
	if req.SimilarityThreshold == nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_input", "missing required field: similarity_threshold")
		return
	}

	if err := sh.Threshold.Set(r.Context(), *req.SimilarityThreshold); err != nil {
		writeServiceError(w, err)
		return
	}

	log.Printf("Updated similarity threshold to %.4f", *req.SimilarityThreshold)
	writeJSON(w, http.StatusOK, map[string]float64{"similarity_threshold": sh.Threshold.Get()})
}
