package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"manga-progress/internal/bookmarks"
	"manga-progress/internal/catalog"
)

// SessionName is the cookie holding the last read volume
const SessionName = "manga-progress"

// ProgressHandler serves the catalog, series order and bookmark endpoints
type ProgressHandler struct {
	Progress    *catalog.ProgressStore
	SeriesOrder *catalog.SeriesOrderStore
	Bookmarks   *bookmarks.Store
	Sessions    sessions.Store
	Logger      *slog.Logger
	StartTime   time.Time
}

type updateProgressRequest struct {
	Path        string `json:"path"`
	PageIdx     int    `json:"page_idx"`
	LastPageIdx int    `json:"last_page_idx"`
}

type updateSeriesOrderRequest struct {
	NewOrder []string `json:"new_order"`
}

type lastReadResponse struct {
	Path    string `json:"path"`
	PageIdx int    `json:"page_idx"`
}

// GetProgressHandler returns the full catalog
func (h *ProgressHandler) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Progress.Load()
	if err != nil {
		h.Logger.Error("failed to load progress", "error", err)
		respondJSONError(w, h.Logger, http.StatusInternalServerError, "failed to load progress")
		return
	}

	h.Logger.Debug("progress loaded", "entries", len(entries))
	respondJSON(w, h.Logger, http.StatusOK, entries)
}

// UpdateProgressHandler stores the reading position of one volume
func (h *ProgressHandler) UpdateProgressHandler(w http.ResponseWriter, r *http.Request) {
	var req updateProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	h.Logger.Debug("progress update received", "path", req.Path, "page_idx", req.PageIdx)

	entry, err := h.Progress.Update(req.Path, req.PageIdx, req.LastPageIdx)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		h.Logger.Warn("progress update for unknown volume", "path", req.Path)
		respondJSON(w, h.Logger, http.StatusNotFound, statusResponse{Status: "not found"})
		return
	case errors.Is(err, catalog.ErrInvalidPage):
		respondJSONError(w, h.Logger, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		respondJSONError(w, h.Logger, http.StatusInternalServerError, "failed to save progress")
		return
	}

	// Remember the volume for the bookshelf's "continue reading" link
	h.rememberLastRead(w, r, entry)

	respondJSON(w, h.Logger, http.StatusOK, statusResponse{Status: "updated"})
}

// LastReadHandler returns the volume most recently updated from this browser
func (h *ProgressHandler) LastReadHandler(w http.ResponseWriter, r *http.Request) {
	resp := lastReadResponse{}
	if h.Sessions != nil {
		session, err := h.Sessions.Get(r, SessionName)
		if err != nil {
			h.Logger.Debug("ignoring unreadable session cookie", "error", err)
		}
		if session != nil {
			resp.Path, _ = session.Values["path"].(string)
			resp.PageIdx, _ = session.Values["page_idx"].(int)
		}
	}
	respondJSON(w, h.Logger, http.StatusOK, resp)
}

func (h *ProgressHandler) rememberLastRead(w http.ResponseWriter, r *http.Request, entry catalog.Entry) {
	if h.Sessions == nil {
		return
	}
	session, err := h.Sessions.Get(r, SessionName)
	if session == nil {
		h.Logger.Warn("cannot open session", "error", err)
		return
	}
	session.Values["path"] = entry.Path
	session.Values["page_idx"] = entry.PageIdx
	if err := session.Save(r, w); err != nil {
		h.Logger.Warn("cannot save session", "error", err)
	}
}

// GetSeriesOrderHandler returns the stored series display order
func (h *ProgressHandler) GetSeriesOrderHandler(w http.ResponseWriter, r *http.Request) {
	order, err := h.SeriesOrder.Load()
	if err != nil {
		h.Logger.Error("failed to load series order", "error", err)
		respondJSONError(w, h.Logger, http.StatusInternalServerError, "failed to load series order")
		return
	}
	respondJSON(w, h.Logger, http.StatusOK, order)
}

// UpdateSeriesOrderHandler replaces the series display order
func (h *ProgressHandler) UpdateSeriesOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req updateSeriesOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.SeriesOrder.Save(req.NewOrder); err != nil {
		if errors.Is(err, catalog.ErrEmptyOrder) {
			respondJSONError(w, h.Logger, http.StatusBadRequest, "the series order is empty")
			return
		}
		h.Logger.Error("failed to save series order", "error", err)
		respondJSONError(w, h.Logger, http.StatusInternalServerError, "failed to save series order: "+err.Error())
		return
	}

	respondJSON(w, h.Logger, http.StatusOK, statusResponse{Status: "success", Message: "series order updated"})
}

// HealthHandler reports that the server is up
func (h *ProgressHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.Logger, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.StartTime).Round(time.Second).String(),
	})
}
