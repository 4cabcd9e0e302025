package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"bloodlink/internal/http/handlers"
	"bloodlink/internal/infra"
	"bloodlink/internal/middleware"
)

// NewRouter wires the REST surface the donation flow consumes.
func NewRouter(app *handlers.App, cfg *infra.Config, countryLookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.I18N("en", countryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/session", app.AuthSession)
		r.With(middleware.AuthJWT(cfg.JWTSecret)).Get("/me", app.Me)
	})

	r.Route("/api/payments", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).
			Post("/create-intent", app.PaymentsCreateIntent)
		r.Post("/webhook", app.PaymentsWebhook)
	})

	r.Route("/api/funds", func(r chi.Router) {
		r.With(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute)).
			Post("/", app.FundsCreate)
		r.Get("/", app.FundsList)
	})

	// Older clients post to /funds without the /api prefix.
	r.Post("/funds", app.FundsCreate)

	return r
}
