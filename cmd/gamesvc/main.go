package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/avvvet/sus-services/configs"
	"github.com/avvvet/sus-services/internal/gamesvc/broker"
	"github.com/avvvet/sus-services/internal/gamesvc/cache"
	settings "github.com/avvvet/sus-services/internal/gamesvc/config"
	"github.com/avvvet/sus-services/internal/gamesvc/db"
	handlers "github.com/avvvet/sus-services/internal/gamesvc/handlers"
	"github.com/avvvet/sus-services/internal/gamesvc/notify"
	"github.com/avvvet/sus-services/internal/gamesvc/roles"
	"github.com/avvvet/sus-services/internal/gamesvc/service"
	"github.com/avvvet/sus-services/internal/gamesvc/store"
	"github.com/avvvet/sus-services/internal/gamesvc/store/memory"
	"github.com/avvvet/sus-services/internal/gamesvc/words"
	nats "github.com/avvvet/sus-services/internal/nats"
)

const SERVICE_NAME = "game"

var instanceId string

func init() {
	config.LoadEnv(SERVICE_NAME)
	instanceId = config.CreateUniqueInstance(SERVICE_NAME)
	config.Logging(SERVICE_NAME + "_service_" + instanceId[:8])
}

func main() {
	cfg, err := settings.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// durable store
	var backend store.Backend
	switch cfg.Storage {
	case settings.StorageMemory:
		backend = memory.New()
		log.Warn("in-memory storage selected, nothing survives a restart")
	default:
		conn, err := db.Connect(cfg.PostgresURL)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer conn.Close()
		if err := db.Migrate(ctx, conn); err != nil {
			log.Fatalf("Failed to migrate DB: %v", err)
		}
		log.Printf("pg connection established successfully")
		backend = store.NewPostgres(conn)
	}

	// Connect to NATS
	n, err := nats.Connect(cfg.NatsURL, cfg.NatsToken, "gamesvc "+instanceId)
	if err != nil {
		log.Fatalf("Error: unable to connect to NATS server %v", err)
	}
	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	var notifier notify.Notifier
	switch cfg.Notifier {
	case settings.NotifierTelegram:
		notifier, err = notify.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("Error: unable to start telegram bot %v", err)
		}
	default:
		notifier = notify.NewGateway(n.Conn, "")
	}

	c := cache.New(backend)
	resolver := roles.NewNatsResolver(n.Conn, "")
	scraper := words.NewScraper(&http.Client{Timeout: 10 * time.Second}, words.DefaultSources)

	queries := service.NewQueryService(c)
	b := broker.NewBroker(n.Conn, broker.Services{
		Groups:  service.NewGroupService(c),
		Games:   service.NewGameService(c, resolver, scraper, notifier, nil),
		Votes:   service.NewVoteService(c, resolver, notifier),
		Queries: queries,
	})

	// one instance owns the game state, run a single replica
	sub, err := b.Subscribe(cfg.EventsSubject)
	if err != nil {
		log.Fatalf("Error: unable to subscribe to %s %v", cfg.EventsSubject, err)
	}
	go b.Heartbeat(ctx, instanceId, cfg.Heartbeat)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(config.CORS(cfg.CORSOrigins).Handler)

	// to protect the service api from any over requests
	r.Use(httprate.LimitByIP(cfg.RateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(queries, cfg.Port)
	h.InitAuth(cfg.JWTSecret)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// stop taking commands, then let the running ones finish
	if err := b.Drain(shutdownCtx, sub); err != nil {
		log.Warnf("unable to drain subscription: %v", err)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
		return
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
