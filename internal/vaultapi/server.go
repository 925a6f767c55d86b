package vaultapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// Config holds the settings of the HTTP endpoint.
type Config struct {
	Host        string
	Port        int
	CorsOrigins []string `toml:",omitempty"`

	// RateLimit caps accepted requests per second across all clients.
	// Zero disables limiting.
	RateLimit float64 `toml:",omitempty"`
	RateBurst int     `toml:",omitempty"`

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig contains reasonable default settings.
var DefaultConfig = Config{
	Host:         "localhost",
	Port:         8645,
	RateLimit:    100,
	RateBurst:    200,
	ReadTimeout:  30 * time.Second,
	WriteTimeout: 30 * time.Second,
	IdleTimeout:  120 * time.Second,
}

// Endpoint returns the listen address.
func (c *Config) Endpoint() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// Server runs the API on a TCP listener.
type Server struct {
	cfg     Config
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
	group    *errgroup.Group
}

// NewServer creates a server for backend. It does not listen until Start.
func NewServer(backend Backend, cfg Config) *Server {
	return &Server{
		cfg:     cfg,
		handler: NewHandler(backend, cfg),
	}
}

// NewHandler wraps the API routes in the request id, rate limit and CORS
// middleware.
func NewHandler(backend Backend, cfg Config) http.Handler {
	var h http.Handler = NewAPI(backend).Routes()
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		h = newLimitHandler(h, rate.NewLimiter(rate.Limit(cfg.RateLimit), burst))
	}
	h = newCorsHandler(h, cfg.CorsOrigins)
	return newRequestIDHandler(h)
}

// Start begins serving. It is a no-op when already running.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.cfg.Endpoint())
	if err != nil {
		return err
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}
	srv := s.server
	s.group = new(errgroup.Group)
	s.group.Go(func() error {
		if err := srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	log.Info("HTTP server started", "endpoint", listener.Addr(), "cors", s.cfg.CorsOrigins, "ratelimit", s.cfg.RateLimit)
	return nil
}

// Stop shuts the server down, waiting for in-flight requests.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if werr := s.group.Wait(); err == nil {
		err = werr
	}
	log.Info("HTTP server stopped", "endpoint", s.listener.Addr())
	s.listener, s.server, s.group = nil, nil, nil
	return err
}

// ListenAddr returns the bound address, or "" when not running.
func (s *Server) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

func newLimitHandler(next http.Handler, limiter *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeError(w, r, errRateLimit)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// newRequestIDHandler tags every request with an id, reusing the caller's
// when it sent one.
func newRequestIDHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		start := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		log.Trace("Served API request", "method", r.Method, "path", r.URL.Path, "reqid", id, "elapsed", time.Since(start))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey{}).(string)
	return id
}
