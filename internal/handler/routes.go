package handler

import "github.com/go-chi/chi/v5"

// Routes mounts the registry API onto a fresh router. Middleware and the
// metrics endpoint are wired by the composition root.
func Routes(h *RegistrationHandler) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", HealthCheck)

	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", h.Submit)
		r.Get("/", h.History)
		r.Get("/active", h.ListActive)
		r.Get("/active/count", h.CountActive)
		r.Get("/suggestions", h.Suggestions)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/checkout", h.CheckOut)
		r.Delete("/{id}", h.Purge)
	})

	r.Route("/blocks", func(r chi.Router) {
		r.Get("/", ListBlocks)
		r.Get("/{code}/lots", ListLots)
	})

	return r
}
