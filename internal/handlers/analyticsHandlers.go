package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"pindrop/internal/services"
	"pindrop/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// GetOverview returns the caller's bookmark and tag counts plus top tags.
func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	overview, err := h.analyticsService.GetOverview(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Msg("Error building analytics overview")
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve analytics overview")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, overview)
}
