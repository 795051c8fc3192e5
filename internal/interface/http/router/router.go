package router

import (
	"time"

	"github.com/gigmile/payments-microservice/internal/interface/http/handler"
	"github.com/gigmile/payments-microservice/internal/interface/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(handlers *handler.Handlers, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.Compress(5))
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	// Routes
	r.Get("/health", handlers.Payment.HealthCheck)

	r.Route("/api/payments", func(r chi.Router) {
		r.Post("/", handlers.Payment.CreatePayment)
		r.Get("/{userId}", handlers.Payment.ListPayments)
		r.Put("/{userId}", handlers.Payment.UpdatePayment)
		r.Delete("/{userId}", handlers.Payment.DeletePayment)
	})

	return r
}
