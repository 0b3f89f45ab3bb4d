package api

import (
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/PiusTetteh/301-GroupProject/internal/handlers"
	"github.com/PiusTetteh/301-GroupProject/internal/middleware"
	"github.com/PiusTetteh/301-GroupProject/internal/service"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
	"github.com/PiusTetteh/301-GroupProject/internal/ws"
)

type Router struct {
	*mux.Router
}

func NewRouter(supervisor *service.Supervisor, store *state.Store, hub *ws.Hub, templatesFS, staticFS fs.FS) (*Router, error) {
	r := mux.NewRouter()

	tmplHandler, err := handlers.NewTemplateHandler(templatesFS, store, supervisor)
	if err != nil {
		return nil, err
	}

	sysHandler := handlers.NewSystemHandler(supervisor, store)

	// Health check endpoints
	r.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/ready", handlers.ReadyCheck).Methods(http.MethodGet)

	// Web UI
	r.HandleFunc("/", tmplHandler.ServeTemplate("dashboard", "Dashboard")).Methods(http.MethodGet)

	// Serve static files (CSS, JS)
	staticHandler := http.FileServer(http.FS(staticFS))
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", staticHandler))

	// Live event feed
	r.HandleFunc("/ws", hub.ServeWS)

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", sysHandler.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/start", sysHandler.StartSystem).Methods(http.MethodPost)
	api.HandleFunc("/stop", sysHandler.StopSystem).Methods(http.MethodPost)
	api.HandleFunc("/stats", sysHandler.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/cores", sysHandler.GetCores).Methods(http.MethodGet)
	api.HandleFunc("/logs", sysHandler.GetLogs).Methods(http.MethodGet)

	// Apply middleware
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)

	return &Router{Router: r}, nil
}

// Handler wraps the router with the outer middleware. CORS sits outside mux
// so OPTIONS preflight is answered even on method-bound routes.
func (r *Router) Handler() http.Handler {
	return middleware.CORS(r)
}
