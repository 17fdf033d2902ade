package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"whenworks/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(scheduleController *controllers.ScheduleController, healthController *controllers.HealthController) *http.ServeMux {
	mux := http.NewServeMux()

	// API Routes
	mux.HandleFunc("POST /api/events", scheduleController.CreateEvent)
	mux.HandleFunc("GET /api/events/{publicID}", scheduleController.GetEvent)
	mux.HandleFunc("POST /api/events/{publicID}/availabilities", scheduleController.SubmitAvailabilities)
	mux.HandleFunc("GET /api/events/{publicID}/availabilities", scheduleController.ListAvailabilities)

	// Health
	mux.HandleFunc("GET /healthz", healthController.Healthz)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
