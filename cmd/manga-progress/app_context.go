package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"manga-progress/cmd/manga-progress/handlers"
	"manga-progress/cmd/manga-progress/utils"
	"manga-progress/internal/bookmarks"
	"manga-progress/internal/catalog"
	"manga-progress/internal/htmlpatch"
	"manga-progress/internal/indexer"
	"manga-progress/internal/library"
)

// AppContext holds all the application state and dependencies
type AppContext struct {
	Config *utils.AppConfig
	Logger *slog.Logger

	// Stores, one per data file
	Progress    *catalog.ProgressStore
	SeriesOrder *catalog.SeriesOrderStore
	Bookmarks   *bookmarks.Store

	// Indexer walks ScanRoot for the scan command
	Indexer *indexer.Indexer

	StartTime time.Time

	// Handlers
	ProgressHandler *handlers.ProgressHandler
	StaticHandler   *handlers.StaticHandler
}

// NewAppContext creates a new application context with all dependencies initialized
func NewAppContext(config *utils.AppConfig, logger *slog.Logger) (*AppContext, error) {
	for _, dir := range config.MissingDirs() {
		logger.Warn("configured directory does not exist", "dir", dir)
	}

	// The server initializes a missing catalog from the served library
	served := library.New(config.MangaRoot, logger.With("component", "library"))
	served.DefaultCover = config.DefaultCover

	scanned := library.New(config.ScanRoot, logger.With("component", "library"))
	scanned.DefaultCover = config.DefaultCover

	progress := catalog.NewProgressStore(config.ProgressFile(), served, logger.With("component", "progress"))
	seriesOrder := catalog.NewSeriesOrderStore(config.SeriesOrderFile(), logger.With("component", "series_order"))
	bookmarkStore := bookmarks.NewStore(config.BookmarksFile(), logger.With("component", "bookmarks"))

	sessionStore, err := newSessionStore(config.SessionKey)
	if err != nil {
		return nil, err
	}

	ctx := &AppContext{
		Config:      config,
		Logger:      logger,
		Progress:    progress,
		SeriesOrder: seriesOrder,
		Bookmarks:   bookmarkStore,
		StartTime:   time.Now(),
	}

	ctx.Indexer = &indexer.Indexer{
		Library:     scanned,
		Progress:    progress,
		SeriesOrder: seriesOrder,
		ScriptTag:   htmlpatch.ScriptTag(config.ScriptSrc),
		Logger:      logger.With("component", "indexer"),
	}

	ctx.ProgressHandler = &handlers.ProgressHandler{
		Progress:    progress,
		SeriesOrder: seriesOrder,
		Bookmarks:   bookmarkStore,
		Sessions:    sessionStore,
		Logger:      logger.With("component", "http"),
		StartTime:   ctx.StartTime,
	}

	ctx.StaticHandler = &handlers.StaticHandler{
		Config: config,
		Logger: logger.With("component", "http"),
	}

	return ctx, nil
}

// newSessionStore builds the cookie store for the last-read session. Without a
// configured key the cookies only survive until the process restarts.
func newSessionStore(key string) (*sessions.CookieStore, error) {
	secret := []byte(key)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return nil, fmt.Errorf("failed to generate session key")
		}
	}

	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}
