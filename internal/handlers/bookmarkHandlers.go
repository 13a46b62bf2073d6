package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"pindrop/internal/models"
	"pindrop/internal/services"
	"pindrop/internal/utils"
)

type BookmarkHandler struct {
	service services.BookmarkService
}

func NewBookmarksHandler(service services.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{service: service}
}

// bookmarkErrorStatus maps service errors to HTTP status codes.
func bookmarkErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrDuplicateURL):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *BookmarkHandler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarks, err := h.service.GetBookmarks(r.Context(), userID, r.URL.Query())
	if err != nil {
		log.Error().Err(err).Msg("Error getting bookmarks from service")
		utils.SendJSONError(w, err.Error(), bookmarkErrorStatus(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bookmarks)
}

func (h *BookmarkHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	var reqBody models.AddBookmarkRequestBody
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		log.Error().Err(err).Msg("Error decoding request body for AddBookmark")
		utils.SendJSONError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	bm, err := h.service.AddBookmark(r.Context(), userID, reqBody)
	if err != nil {
		log.Error().Err(err).Msg("Error adding bookmark via service")
		utils.SendJSONError(w, err.Error(), bookmarkErrorStatus(err))
		return
	}

	log.Info().Str("bookmark_id", bm.ID.Hex()).Msg("Successfully created bookmark")
	utils.RespondWithJSON(w, http.StatusCreated, bm)
}

func (h *BookmarkHandler) GetBookmarkByID(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarkID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	bm, err := h.service.GetBookmarkByID(r.Context(), userID, bookmarkID)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Msg("Error getting bookmark by ID from service")
		utils.SendJSONError(w, err.Error(), bookmarkErrorStatus(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, bm)
}

func (h *BookmarkHandler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarkID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	deleted, err := h.service.DeleteBookmark(r.Context(), userID, bookmarkID)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Msg("Error deleting bookmark via service")
		utils.SendJSONError(w, err.Error(), bookmarkErrorStatus(err))
		return
	}

	if deleted {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *BookmarkHandler) UpdateBookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(w, r)
	if err != nil {
		return
	}

	bookmarkID, err := utils.GetObjectIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var updatePayload models.UpdateBookmarkRequestBody
	if err := json.NewDecoder(r.Body).Decode(&updatePayload); err != nil {
		log.Error().Err(err).Msg("Invalid JSON payload for UpdateBookmark")
		utils.SendJSONError(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	updatedBookmark, err := h.service.UpdateBookmark(r.Context(), userID, bookmarkID, updatePayload)
	if err != nil {
		log.Error().Err(err).Str("bookmark_id", bookmarkID.Hex()).Msg("Error updating bookmark via service")
		utils.SendJSONError(w, err.Error(), bookmarkErrorStatus(err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updatedBookmark)
}
