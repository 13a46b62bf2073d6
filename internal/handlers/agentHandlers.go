package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"pindrop/internal/services"
	"pindrop/internal/utils"
)

type AgentHandler struct {
	agentService services.AgentService
}

func NewAgentHandler(agentService services.AgentService) *AgentHandler {
	return &AgentHandler{agentService: agentService}
}

// GenerateSummary asks the LLM for a summary of the bookmark and stores it
// as the bookmark's description.
func (h *AgentHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarkID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	bm, err := h.agentService.SummarizeBookmark(r.Context(), userID, bookmarkID)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Msg("Error summarizing bookmark via service")
		statusCode := http.StatusInternalServerError
		if errors.Is(err, services.ErrNotFound) {
			statusCode = http.StatusNotFound
		}
		utils.SendJSONError(w, err.Error(), statusCode)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bm)
}
