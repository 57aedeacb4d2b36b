package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/jeckxploit/video-generate-ai/internal/http/handlers"
	"github.com/jeckxploit/video-generate-ai/internal/middleware"
)

// NewRouter wires middleware and routes. CORS stays wide open: the wizard
// ships on arbitrary origins and carries only an opaque session id.
func NewRouter(app *handlers.App, logger zerolog.Logger, defaultLocale string, countryLookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.I18N(defaultLocale, countryLookup),
		cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{
				"Authorization", "X-Client-Info", "Apikey", "Content-Type",
				"X-Locale", "X-Request-ID",
			},
		}).Handler,
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/functions/v1/generate-video", func(r chi.Router) {
		r.Get("/", app.GenerateVideo)
		r.Post("/", app.GenerateVideo)
	})

	return r
}
