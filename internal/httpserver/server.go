package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fdg312/nutridesk/internal/access"
	"github.com/fdg312/nutridesk/internal/auth"
	"github.com/fdg312/nutridesk/internal/blob"
	"github.com/fdg312/nutridesk/internal/catalog"
	"github.com/fdg312/nutridesk/internal/clients"
	"github.com/fdg312/nutridesk/internal/config"
	"github.com/fdg312/nutridesk/internal/daycache"
	"github.com/fdg312/nutridesk/internal/daylog"
	"github.com/fdg312/nutridesk/internal/exports"
	"github.com/fdg312/nutridesk/internal/goals"
	"github.com/fdg312/nutridesk/internal/measurements"
	"github.com/fdg312/nutridesk/internal/menus"
	"github.com/fdg312/nutridesk/internal/storage"
	"github.com/fdg312/nutridesk/internal/storage/memory"
	"github.com/fdg312/nutridesk/internal/storage/postgres"
)

// Server is the HTTP API.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	dayCache       *daycache.RedisCache
	authMiddleware *auth.Middleware
}

// New creates the server and registers every route.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage picks Postgres when a database URL is set, memory otherwise.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: using in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL...")
	pgStorage, err := postgres.New(context.Background(), s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: PostgreSQL connection failed: %v", err)
		log.Println("WARN storage: falling back to in-memory storage")
		s.storage = memory.New()
		return
	}
	log.Println("INFO storage: PostgreSQL connected")
	s.storage = pgStorage
}

// initDayCache connects to Redis when REDIS_URL is set. Without it the day
// loader still deduplicates concurrent loads.
func (s *Server) initDayCache() daycache.Cache {
	if s.config.RedisURL == "" {
		log.Println("INFO daycache: REDIS_URL not set, singleflight only")
		return nil
	}

	cache, err := daycache.NewRedisCache(s.config.RedisURL)
	if err != nil {
		log.Printf("WARN daycache: %v, singleflight only", err)
		return nil
	}
	log.Println("INFO daycache: redis connected")
	s.dayCache = cache
	return cache
}

// initBlobStore builds the exports store. EXPORTS_MODE overrides BLOB_MODE.
func (s *Server) initBlobStore() blob.Store {
	log.Printf("INFO blob: initializing exports store (mode=%s)", s.config.Blob.EffectiveExportsMode())
	store, mode, err := blob.NewExportsStore(s.config.Blob, log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize exports store: %v", err)
	}
	log.Printf("INFO blob: exports blob mode: %s", mode)
	return store
}

func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	// POST /v1/auth/dev - dev token (AUTH_MODE=dev only)
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	clientsStorage := s.storage.GetClientsStorage()
	checker := access.NewChecker(clientsStorage)

	// Catalog API
	catalogHandler := catalog.NewHandler(catalog.NewService(s.storage.GetCatalogStorage(), positive(s.config.CatalogSearchMaxLimit, 50)))
	s.mux.HandleFunc("GET /v1/catalog/search", catalogHandler.HandleSearch)
	s.mux.HandleFunc("GET /v1/catalog/items/{id}", catalogHandler.HandleGet)
	s.mux.HandleFunc("POST /v1/catalog/items", catalogHandler.HandleCreate)
	s.mux.HandleFunc("DELETE /v1/catalog/items/{id}", catalogHandler.HandleDelete)
	s.mux.HandleFunc("POST /v1/catalog/items/{id}/scale", catalogHandler.HandleScale)

	// Goals API
	goalsService := goals.NewService(s.storage.GetGoalsStorage())
	goalsHandler := goals.NewHandler(goalsService, checker)
	s.mux.HandleFunc("GET /v1/goals", goalsHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/goals", goalsHandler.HandleUpsert)

	// Day log and journal API
	ttl := time.Duration(positive(s.config.DayCacheTTLSeconds, 60)) * time.Second
	loader := daycache.New[[]storage.DayEntry]("day", s.initDayCache(), ttl, log.Default())
	daysService := daylog.NewService(s.storage.GetDayEntriesStorage(), goalsService, loader, daylog.Options{
		MaxEntriesPerDay: positive(s.config.DayMaxEntries, 200),
		MaxJournalDays:   positive(s.config.JournalMaxRangeDays, 31),
	})
	daysHandler := daylog.NewHandler(daysService, checker)
	s.mux.HandleFunc("GET /v1/days/{date}", daysHandler.HandleGetDay)
	s.mux.HandleFunc("POST /v1/days/{date}/entries", daysHandler.HandleCreateEntry)
	s.mux.HandleFunc("DELETE /v1/days/{date}/entries/{id}", daysHandler.HandleDeleteEntry)
	s.mux.HandleFunc("GET /v1/journal", daysHandler.HandleJournal)

	// Menu templates API
	menusService := menus.NewService(s.storage.GetMenusStorage(), positive(s.config.MenuMaxItemsPerSlot, 30))
	menusHandler := menus.NewHandler(menusService)
	s.mux.HandleFunc("GET /v1/menus", menusHandler.HandleList)
	s.mux.HandleFunc("POST /v1/menus", menusHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/menus/{id}", menusHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/menus/{id}", menusHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/menus/{id}", menusHandler.HandleDelete)

	// Measurements API
	measurementsService := measurements.NewService(s.storage.GetMeasurementsStorage())
	s.mux.HandleFunc("GET /v1/measurements", measurements.HandleList(measurementsService, checker))
	s.mux.HandleFunc("POST /v1/measurements", measurements.HandleUpsert(measurementsService, checker))
	s.mux.HandleFunc("DELETE /v1/measurements/{id}", measurements.HandleDelete(measurementsService, checker))

	// Clients API
	clientsService := clients.NewService(clientsStorage)
	s.mux.HandleFunc("GET /v1/clients", clients.HandleList(clientsService))
	s.mux.HandleFunc("POST /v1/clients", clients.HandleAssign(clientsService))
	s.mux.HandleFunc("DELETE /v1/clients/{clientId}", clients.HandleUnassign(clientsService))

	// Exports API
	exportsService := exports.NewService(s.storage.GetExportsStorage(), menusService, daysService, s.initBlobStore(), exports.Options{
		MaxRangeDays:      positive(s.config.ExportsMaxRangeDays, 90),
		PresignTTLSeconds: s.config.Blob.S3.PresignTTLSeconds,
		PublicBaseURL:     s.config.Blob.S3.PublicBaseURL,
		PreferPublicURL:   s.config.Blob.S3.PreferPublicURL,
	}, log.Default())
	exportsHandler := exports.NewHandlers(exportsService, checker)
	s.mux.HandleFunc("POST /v1/exports", exportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/exports", exportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/exports/{id}/download", exportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/exports/{id}", exportsHandler.HandleDelete)
}

func positive(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler returns the router wrapped in the middleware chain, outermost
// first: CORS, rate limit, auth.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMiddleware.Handler(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start listens on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("INFO server: listening on http://localhost%s", addr)
	log.Printf("INFO server: health check http://localhost%s/healthz", addr)

	return http.ListenAndServe(addr, s.Handler())
}

// Close releases storage and the Redis client.
func (s *Server) Close() error {
	if s.dayCache != nil {
		if err := s.dayCache.Close(); err != nil {
			log.Printf("WARN daycache: close failed: %v", err)
		}
	}
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
