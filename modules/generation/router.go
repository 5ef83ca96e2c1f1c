package generation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOptions configures the generation module router. Auth is required;
// RateLimit is optional and applied to the generation endpoints only, not to
// the read-only status and usage ones.
type RouterOptions struct {
	Handler   *Handler
	Auth      func(http.Handler) http.Handler
	RateLimit func(http.Handler) http.Handler
}

// Router mounts the generation endpoints.
//
//	r.Mount("/api", generation.Router(generation.RouterOptions{
//	    Handler: handler,
//	    Auth:    auth.Middleware(validator),
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(opts.Auth)

	r.Group(func(g chi.Router) {
		if opts.RateLimit != nil {
			g.Use(opts.RateLimit)
		}
		g.Post("/conversation", opts.Handler.Conversation)
		g.Post("/image", opts.Handler.Image)
		g.Post("/music", opts.Handler.Music)
		g.Post("/video", opts.Handler.Video)
	})

	r.Get("/video/status", opts.Handler.VideoStatus)
	r.Get("/usage", opts.Handler.Usage)

	return r
}
