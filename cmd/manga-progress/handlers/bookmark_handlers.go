package handlers

import (
	"errors"
	"net/http"

	"manga-progress/internal/bookmarks"
)

type updateBookmarkRequest struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	PageIdx int    `json:"page_idx"`
}

type deleteBookmarkRequest struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

type bookmarkResponse struct {
	Status    string               `json:"status"`
	Bookmarks []bookmarks.Bookmark `json:"bookmarks"`
}

// GetBookmarksHandler returns the bookmarks of the volume named by ?path=
func (h *ProgressHandler) GetBookmarksHandler(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Bookmarks.List(r.URL.Query().Get("path"))
	if err != nil {
		h.Logger.Error("failed to load bookmarks", "error", err)
		respondJSONError(w, h.Logger, http.StatusInternalServerError, "failed to load bookmarks")
		return
	}
	respondJSON(w, h.Logger, http.StatusOK, entry)
}

// UpdateBookmarkHandler creates a bookmark or moves an existing one with the same title
func (h *ProgressHandler) UpdateBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	var req updateBookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.Bookmarks.Upsert(req.Path, req.Title, req.PageIdx)
	if err != nil {
		h.bookmarkError(w, err)
		return
	}
	respondJSON(w, h.Logger, http.StatusOK, bookmarkResponse{Status: "ok", Bookmarks: entry.Bookmarks})
}

// DeleteBookmarkHandler removes bookmarks by title
func (h *ProgressHandler) DeleteBookmarkHandler(w http.ResponseWriter, r *http.Request) {
	var req deleteBookmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Bookmarks.Delete(req.Path, req.Title); err != nil {
		h.bookmarkError(w, err)
		return
	}
	respondJSON(w, h.Logger, http.StatusOK, statusResponse{Status: "ok"})
}

func (h *ProgressHandler) bookmarkError(w http.ResponseWriter, err error) {
	if errors.Is(err, bookmarks.ErrInvalidPath) {
		respondJSONError(w, h.Logger, http.StatusBadRequest, err.Error())
		return
	}
	h.Logger.Error("failed to save bookmarks", "error", err)
	respondJSONError(w, h.Logger, http.StatusInternalServerError, "failed to save bookmarks")
}
