package registry

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions tunes the assembled HTTP surface.
type RouterOptions struct {
	// EnableCORS opens the API to browser clients on any origin.
	EnableCORS bool
}

// NewRouter assembles the full API surface. Registration, login and the
// by-plate violation lookup are public; everything else sits behind the
// bearer-token middleware.
func NewRouter(store *Store, auth *Authenticator, opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", createUserHandler(store))
		r.Post("/login", loginHandler(auth))

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Get("/", listUsersHandler(store))
			r.Get("/@me", currentUserHandler())
		})
	})

	r.Route("/vehicles", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/", listVehiclesHandler(store))
		r.Post("/", registerVehicleHandler(store))
	})

	r.Route("/violations", func(r chi.Router) {
		r.Get("/{plate}", violationsByPlateHandler(store))

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Get("/", listViolationsHandler(store))
			r.Post("/", createViolationHandler(store))
			r.Delete("/{id:[0-9]+}", deleteViolationHandler(store))
		})
	})

	r.Route("/refutations", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/", listRefutationsHandler(store))
		r.Post("/", createRefutationHandler(store))
		r.Post("/response", respondRefutationHandler(store))
		r.Delete("/{id:[0-9]+}", deleteRefutationHandler(store))
	})

	r.Route("/transactions", func(r chi.Router) {
		r.Use(auth.Middleware)
		r.Get("/", listTransactionsHandler(store))
		r.Post("/", createTransactionHandler(store))
	})

	r.Route("/detected", func(r chi.Router) {
		r.Use(auth.Middleware, requireManageDetected)
		r.Get("/", listDetectedHandler(store))
		r.Post("/", createDetectedHandler(store))
		r.Delete("/{id:[0-9]+}", deleteDetectedHandler(store))
	})

	return r
}
