package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sets up chi router, middlewares and defines all api endpoints
func (s *Server) routes() {
	// Inject routes
	s.r = chi.NewRouter()

	// Basic CORS
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	// Inject chi middleware
	// Injects a request ID into the context of each request
	s.r.Use(middleware.RequestID)
	// Sets a http.Request's RemoteAddr to either X-Real-IP or X-Forwarded-For
	s.r.Use(middleware.RealIP)
	// Logs the start and end of each request with the elapsed processing time
	s.r.Use(middleware.Logger)
	// Gracefully absorb panics and prints the stack trace
	s.r.Use(middleware.Recoverer)

	if s.metrics != nil {
		s.r.Use(s.metrics.Middleware)
	}

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	s.r.Use(middleware.Timeout(60 * time.Second))

	s.r.Handle("/metrics", promhttp.Handler())

	// QR rendering sets its own content type, so it sits outside the
	// JSON group.
	s.r.Get("/v1/qr", s.handleQRGet)

	s.r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		r.Get("/health", s.handleHealthGet)
		r.Get("/fees", s.handleFeesGet)

		r.Post("/deposits", s.handleDepositCreate)
		r.Post("/deposits/tx", s.handleDepositTransactionCreate)
		r.Post("/deposits/notify", s.handleDepositNotify)
		r.Get("/deposits", s.handleDepositsGet)

		r.Post("/withdrawals", s.handleWithdrawalCreate)
		r.Get("/withdrawals", s.handleWithdrawalsGet)

		r.Get("/transactions/{txid}/status", s.handleStatusGet)
		r.Get("/balance/{principal}", s.handleBalanceGet)
	})
}
