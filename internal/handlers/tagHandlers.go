package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"pindrop/internal/models"
	"pindrop/internal/services"
	"pindrop/internal/utils"
)

type TagHandler struct {
	service services.TagService
}

func NewTagHandler(service services.TagService) *TagHandler {
	return &TagHandler{service: service}
}

func tagErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case strings.Contains(err.Error(), "already exists"):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *TagHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var tag models.Tag
	if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
		log.Error().Err(err).Msg("Invalid JSON input for AddTag")
		utils.SendJSONError(w, "Invalid JSON input: "+err.Error(), http.StatusBadRequest)
		return
	}

	addedTag, err := h.service.AddTag(r.Context(), userID, tag)
	if err != nil {
		log.Error().Err(err).Msg("Error adding tag via service")
		utils.SendJSONError(w, err.Error(), tagErrorStatus(err))
		return
	}

	log.Info().Str("tag_id", addedTag.ID.Hex()).Str("tag_name", addedTag.Name).Msg("Tag added successfully")
	utils.RespondWithJSON(w, http.StatusCreated, addedTag)
}

// GetTagsByID resolves the tags named by the repeated "id" query parameter.
func (h *TagHandler) GetTagsByID(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	ids, err := utils.ParseObjectIDs(strings.Join(r.URL.Query()["id"], ","))
	if err != nil {
		utils.SendJSONError(w, "Invalid tag ID format", http.StatusBadRequest)
		return
	}

	tags, err := h.service.GetTagsByID(r.Context(), userID, ids)
	if err != nil {
		log.Error().Err(err).Msg("Error getting tags by ID from service")
		utils.SendJSONError(w, err.Error(), tagErrorStatus(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) GetUserTags(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	tags, err := h.service.GetUserTags(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Error getting user tags from service")
		utils.SendJSONError(w, err.Error(), tagErrorStatus(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	tagID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	deleted, err := h.service.DeleteTag(r.Context(), userID, tagID)
	if err != nil {
		log.Error().Err(err).Str("tag_id", tagID.Hex()).Str("user_id", userID.Hex()).Msg("Error deleting tag via service")
		utils.SendJSONError(w, err.Error(), tagErrorStatus(err))
		return
	}

	if deleted {
		log.Info().Str("tag_id", tagID.Hex()).Str("user_id", userID.Hex()).Msg("Tag deleted successfully")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	tagID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var updatePayload models.TagUpdate
	if err := json.NewDecoder(r.Body).Decode(&updatePayload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON payload for UpdateTag")
		utils.SendJSONError(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	updatedTag, err := h.service.UpdateTag(r.Context(), userID, tagID, updatePayload)
	if err != nil {
		log.Error().Err(err).Str("tag_id", tagID.Hex()).Msg("Error updating tag via service")
		utils.SendJSONError(w, err.Error(), tagErrorStatus(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updatedTag)
}
