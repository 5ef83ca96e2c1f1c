package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouterOptions configures the billing routes. The webhook endpoint
// authenticates by signature, not by user token, so Auth only guards the
// session endpoint.
type RouterOptions struct {
	Handler *Handler
	Auth    func(http.Handler) http.Handler
}

// Routes registers the billing endpoints on the given router. They live at
// the API root next to the generation endpoints, so this registers onto an
// existing router instead of mounting a subrouter.
func Routes(r chi.Router, opts RouterOptions) {
	r.Group(func(g chi.Router) {
		g.Use(opts.Auth)
		g.Get("/stripe", opts.Handler.Session)
	})
	r.Post("/webhook", opts.Handler.Webhook)
}
