package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"manga-progress/cmd/manga-progress/handlers"
)

// RouteConfig holds information for registering a route
type RouteConfig struct {
	Path    string
	Handler http.HandlerFunc
	Methods []string
}

// RegisterRoutes registers all application routes with the router
func RegisterRoutes(r *mux.Router, ctx *AppContext) {
	routes := []RouteConfig{
		// Pages
		{"/", ctx.StaticHandler.IndexHandler, []string{"GET"}},
		{"/serve_bookshelf", ctx.StaticHandler.BookshelfHandler, []string{"GET"}},
		{"/reader.html", ctx.StaticHandler.ReaderHandler, []string{"GET"}},

		// Reading progress
		{"/progress", ctx.ProgressHandler.GetProgressHandler, []string{"GET"}},
		{"/update_progress", ctx.ProgressHandler.UpdateProgressHandler, []string{"POST", "OPTIONS"}},
		{"/last_read", ctx.ProgressHandler.LastReadHandler, []string{"GET"}},

		// Series order
		{"/series_order", ctx.ProgressHandler.GetSeriesOrderHandler, []string{"GET"}},
		{"/update_series_order", ctx.ProgressHandler.UpdateSeriesOrderHandler, []string{"POST", "OPTIONS"}},

		// Bookmarks
		{"/bookmarks", ctx.ProgressHandler.GetBookmarksHandler, []string{"GET"}},
		{"/update_bookmark", ctx.ProgressHandler.UpdateBookmarkHandler, []string{"POST", "OPTIONS"}},
		{"/delete_bookmark", ctx.ProgressHandler.DeleteBookmarkHandler, []string{"POST", "OPTIONS"}},

		{"/healthz", ctx.ProgressHandler.HealthHandler, []string{"GET"}},
	}

	for _, route := range routes {
		r.HandleFunc(route.Path, route.Handler).Methods(route.Methods...)
	}

	// Manga library and static assets
	r.PathPrefix("/manga/").Handler(ctx.StaticHandler.MangaHandler()).Methods("GET", "HEAD")
	r.PathPrefix("/static/").Handler(ctx.StaticHandler.AssetsHandler()).Methods("GET", "HEAD")

	r.Use(handlers.RecoverMiddleware(ctx.Logger))
	r.Use(handlers.LoggingMiddleware(ctx.Logger))
	r.Use(mux.CORSMethodMiddleware(r))
	r.Use(handlers.CORSMiddleware())
}

// NewRouter builds the application router
func NewRouter(ctx *AppContext) *mux.Router {
	r := mux.NewRouter()
	RegisterRoutes(r, ctx)
	return r
}
