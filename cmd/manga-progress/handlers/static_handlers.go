package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"manga-progress/cmd/manga-progress/utils"
)

// StaticHandler serves the bookshelf UI, the reader page and the manga library
type StaticHandler struct {
	Config *utils.AppConfig
	Logger *slog.Logger
}

// IndexHandler redirects to the bookshelf
func (h *StaticHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/serve_bookshelf", http.StatusFound)
}

// BookshelfHandler serves the bookshelf page
func (h *StaticHandler) BookshelfHandler(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.Config.BookshelfPage)
}

// ReaderHandler serves the reader page
func (h *StaticHandler) ReaderHandler(w http.ResponseWriter, r *http.Request) {
	h.servePage(w, r, h.Config.ReaderPage)
}

func (h *StaticHandler) servePage(w http.ResponseWriter, r *http.Request, name string) {
	file := filepath.Join(h.Config.StaticDir, name)
	if !utils.FileExists(file) {
		h.Logger.Warn("static page missing", "file", file)
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, file)
}

// MangaHandler serves files below the manga root. Images get a long-lived cache header.
func (h *StaticHandler) MangaHandler() http.Handler {
	return http.StripPrefix("/manga/", h.fileServer(h.Config.MangaRoot, func(w http.ResponseWriter, file string) {
		if utils.IsImageFile(file) && utils.FileExists(file) && h.Config.ImageCacheMaxAge > 0 {
			w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(h.Config.ImageCacheMaxAge/time.Second)))
		}
	}))
}

// AssetsHandler serves /static/ from the static dir with caching disabled so
// script updates reach readers immediately
func (h *StaticHandler) AssetsHandler() http.Handler {
	return http.StripPrefix("/static/", h.fileServer(h.Config.StaticDir, func(w http.ResponseWriter, file string) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
	}))
}

// fileServer serves files from root without directory listings
func (h *StaticHandler) fileServer(root string, setHeaders func(w http.ResponseWriter, file string)) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		file := filepath.Join(root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if utils.DirExists(file) {
			http.NotFound(w, r)
			return
		}
		setHeaders(w, file)
		files.ServeHTTP(w, r)
	})
}
