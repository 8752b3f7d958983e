package httpapi

import (
	"net/http"

	"postpilot/internal/http/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(app *handlers.App, mediaDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/generate", func(r chi.Router) {
		r.Post("/caption", app.GenerateCaption)
		r.Post("/hashtags", app.GenerateHashtags)
		r.Post("/hashtags-from-image", app.GenerateHashtagsFromImage)
		r.Post("/captions-per-platform", app.GenerateCaptionsPerPlatform)
		r.Post("/video-ideas", app.GenerateVideoIdeas)
		r.Post("/video-hook", app.GenerateVideoHook)
		r.Post("/short-script", app.GenerateShortScript)
		r.Post("/campaign", app.GenerateCampaign)
		r.Post("/variants", app.GenerateVariants)
		r.Post("/weekly-summary", app.GenerateWeeklySummary)
		r.Post("/all", app.GenerateAll)
		r.Post("/image", app.GenerateImage)
		r.Post("/video", app.GenerateVideo)
	})

	r.Route("/v1/posts", func(r chi.Router) {
		r.Get("/", app.ListPosts)
		r.Post("/", app.SavePost)
		r.Get("/board", app.PostsBoard)
		r.Post("/reorder", app.ReorderPosts)
		r.Post("/import", app.ImportPosts)
		r.Get("/export", app.ExportPosts)
		r.Patch("/{id}/status", app.SetPostStatus)
		r.Delete("/{id}", app.DeletePost)
	})

	if mediaDir != "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir)))
		r.Get("/media/*", fs.ServeHTTP)
	}

	return r
}
