package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonathan/autojob/internal/command"
	"github.com/jonathan/autojob/internal/config"
	"github.com/jonathan/autojob/internal/db"
	"github.com/jonathan/autojob/internal/discovery"
	"github.com/jonathan/autojob/internal/dispatch"
	"github.com/jonathan/autojob/internal/fetch"
	"github.com/jonathan/autojob/internal/intel"
	"github.com/jonathan/autojob/internal/llm"
	"github.com/jonathan/autojob/internal/materials"
	"github.com/jonathan/autojob/internal/metrics"
	"github.com/jonathan/autojob/internal/observability"
	"github.com/jonathan/autojob/internal/pipeline"
	"github.com/jonathan/autojob/internal/risk"
	"github.com/jonathan/autojob/internal/server/middleware"
	"github.com/jonathan/autojob/internal/server/ratelimit"
	"github.com/jonathan/autojob/internal/strategy"
	"github.com/jonathan/autojob/internal/types"
)

// Server exposes the application agent over HTTP.
type Server struct {
	httpServer *http.Server
	database   *db.DB
	profile    *types.UserProfile
	style      types.CoverLetterStyle

	runner     *pipeline.Runner
	cmdRouter  *command.Router
	shield     *risk.Shield
	controller *strategy.Controller
	planner    *strategy.Planner
	journal    *observability.Journal
	collector  *metrics.Collector

	jwtService      *JWTService
	operatorCfg     *config.OperatorConfig
	operatorKeyHash string
	rateLimiter     *ratelimit.Limiter

	// One bulk run at a time. bulkCancel is non-nil while one is in flight.
	bulkMu      sync.Mutex
	bulkCancel  context.CancelFunc
	bulkRunning bool
	bulkLast    *pipeline.BulkSummary
}

// Config holds server configuration
type Config struct {
	Addr            string
	Profile         *types.UserProfile
	APIKey          string
	DatabaseURL     string
	AutomationURL   string
	AdzunaAppID     string
	AdzunaAppKey    string
	SerpAPIKey      string
	Style           types.CoverLetterStyle
	OperatorKeyHash string
}

// New creates a server instance and wires the agent subsystems.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Profile == nil {
		return nil, fmt.Errorf("profile is required")
	}
	if err := cfg.Profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if cfg.Style == "" {
		cfg.Style = types.StyleChillProfessional
	}

	client, err := llm.NewClient(ctx, llm.DefaultGeminiConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s := &Server{
		profile:         cfg.Profile,
		style:           cfg.Style,
		operatorKeyHash: cfg.OperatorKeyHash,
	}

	var ledger pipeline.Ledger
	var history pipeline.History
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.database = database
		ledger = database
		history = database
	}

	s.journal = observability.NewJournal(observability.DefaultJournalCap)
	s.shield = risk.NewShield()
	s.controller = strategy.NewController()
	s.planner = strategy.NewPlanner(client)
	s.collector = metrics.NewCollector()

	fetcher := fetch.NewCachedFetcher(s.database, nil)
	generator := materials.NewGenerator(client)
	s.runner = pipeline.NewRunner(pipeline.RunnerOptions{
		Extractor:  intel.NewExtractor(client, fetcher),
		Matcher:    intel.NewMatcher(client),
		Materials:  generator,
		Dispatcher: dispatch.NewDispatcher(cfg.AutomationURL),
		Shield:     s.shield,
		Journal:    s.journal,
		Ledger:     ledger,
		History:    history,
		Quota:      s.controller.DailyQuota,
		Collector:  s.collector,
	})

	sources := []discovery.Source{discovery.NewIndeedSource()}
	if cfg.AdzunaAppID != "" && cfg.AdzunaAppKey != "" {
		sources = append(sources, discovery.NewAdzunaSource(cfg.AdzunaAppID, cfg.AdzunaAppKey))
	}
	if cfg.SerpAPIKey != "" {
		sources = append(sources, discovery.NewSerpAPISource(cfg.SerpAPIKey))
	}
	searcher := discovery.NewAggregator(s.journal.Logf, sources...)

	s.cmdRouter = command.NewRouter(
		command.NewInterpreter(client), s.shield, s.controller, s.planner, searcher, s.journal)

	// Operator auth is active only when a key hash is configured. A bare
	// setup stays open for local use.
	if cfg.OperatorKeyHash != "" {
		operatorCfg, err := config.NewOperatorConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create operator config: %w", err)
		}
		s.operatorCfg = operatorCfg

		jwtConfig, err := config.NewJWTConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create JWT config: %w", err)
		}
		s.jwtService = NewJWTService(jwtConfig)
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.DefaultConfig())

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second, // pipeline runs pace themselves between states
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the request mux. Mutating endpoints require a bearer token
// when operator auth is configured.
func (s *Server) routes() http.Handler {
	protect := func(h http.HandlerFunc) http.Handler {
		if s.jwtService == nil {
			return h
		}
		return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(h)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", s.handleAuthToken)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.collector.Handler())

	mux.Handle("POST /apply", protect(s.handleApply))
	mux.Handle("POST /apply/stream", protect(s.handleApplyStream))
	mux.Handle("POST /bulk", protect(s.handleBulkStart))
	mux.Handle("POST /bulk/cancel", protect(s.handleBulkCancel))
	mux.HandleFunc("GET /bulk", s.handleBulkStatus)

	mux.Handle("POST /command", protect(s.handleCommand))

	mux.HandleFunc("GET /risk", s.handleRiskStatus)
	mux.Handle("POST /risk/lock", protect(s.handleRiskLock))
	mux.Handle("POST /risk/unlock", protect(s.handleRiskUnlock))
	mux.Handle("POST /risk/override", protect(s.handleRiskOverride))

	mux.HandleFunc("GET /strategy", s.handleStrategyGet)
	mux.Handle("POST /strategy", protect(s.handleStrategyBuild))
	mux.Handle("PATCH /strategy", protect(s.handleStrategyUpdate))
	mux.Handle("DELETE /strategy", protect(s.handleStrategyClear))
	mux.Handle("POST /strategy/toggle", protect(s.handleStrategyToggle))
	mux.HandleFunc("GET /strategy/brief", s.handleStrategyBrief)

	mux.HandleFunc("GET /applications", s.handleListApplications)
	mux.HandleFunc("GET /journal", s.handleJournal)
	mux.HandleFunc("GET /events", s.handleEvents)

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	// Let an in-flight bulk run wind down at the next item boundary.
	s.bulkMu.Lock()
	if s.bulkCancel != nil {
		s.bulkCancel()
	}
	s.bulkMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.database != nil {
		s.database.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit
// information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
