package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/stacksbridge/sbtc-bridge-api/bridge"
	"github.com/stacksbridge/sbtc-bridge-api/database"
	"github.com/stacksbridge/sbtc-bridge-api/metrics"
	"github.com/stacksbridge/sbtc-bridge-api/types"
)

// API server
type Server struct {
	r       chi.Router
	log     *slog.Logger
	svc     *bridge.Service
	db      *database.Database
	metrics *metrics.Metrics
	opts    ServerOpts
}

type ServerOpts struct {
	Logger   *slog.Logger
	Service  *bridge.Service
	Database *database.Database
	Metrics  *metrics.Metrics
	Port     string
}

// Create API server
func NewServer(opts ServerOpts) (*Server, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("bridge service is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		r:       chi.NewRouter(),
		log:     opts.Logger,
		svc:     opts.Service,
		db:      opts.Database,
		metrics: opts.Metrics,
		opts:    opts,
	}
	s.routes()

	return s, nil
}

// Load routes into server and
// starts HTTP server
func (s *Server) StartServer() {
	s.log.Info("📡 Server Started. API Server is now listening on http://localhost:" + s.opts.Port)
	if err := http.ListenAndServe(":"+s.opts.Port, s.r); err != nil {
		s.log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// Turns server into http server
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.r.ServeHTTP(w, r)
}

// Returns JSON response to the API user. HTTP status code
// and data must be provided
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		fmt.Fprintf(w, "%s", err.Error())
	}
}

// Returns an error to the API user
func ERROR(w http.ResponseWriter, statusCode int, err error) {
	w.WriteHeader(statusCode)
	err = json.NewEncoder(w).Encode(map[string]interface{}{"error": err.Error()})
	if err != nil {
		fmt.Fprintf(w, "%s", err.Error())
	}
}

// statusForError maps the bridge error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	var validationErr *types.ValidationError
	var fundsErr *types.InsufficientFundsError
	var networkErr *types.NetworkError
	var protocolErr *types.ProtocolError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &fundsErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &networkErr), errors.As(err, &protocolErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
