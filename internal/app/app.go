// Package app assembles the DevSphere process: configuration, storage,
// services, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/devsphere/devsphere/internal/platform/config"
	"github.com/devsphere/devsphere/internal/platform/storage/mongodb"
	"github.com/devsphere/devsphere/internal/platform/timeouts"
	"github.com/devsphere/devsphere/internal/services/auth"
	authapi "github.com/devsphere/devsphere/internal/services/auth/api/httpapi"
	"github.com/devsphere/devsphere/internal/services/auth/otp"
	"github.com/devsphere/devsphere/internal/services/auth/session"
	authmongo "github.com/devsphere/devsphere/internal/services/auth/storage/mongo"
	"github.com/devsphere/devsphere/internal/services/events"
	eventsapi "github.com/devsphere/devsphere/internal/services/events/api/httpapi"
	eventsmongo "github.com/devsphere/devsphere/internal/services/events/storage/mongo"
	"github.com/devsphere/devsphere/internal/services/mail"
	"github.com/devsphere/devsphere/internal/services/media"
)

// Config holds the full process configuration.
type Config struct {
	HTTPAddr          string        `env:"DEVSPHERE_HTTP_ADDR" envDefault:"localhost:8080"`
	ReadHeaderTimeout time.Duration `env:"DEVSPHERE_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"DEVSPHERE_SHUTDOWN_TIMEOUT" envDefault:"5s"`

	Mongo      mongodb.Config
	Session    session.Config
	OTP        otp.Config
	SMTP       mail.Config
	Cloudinary media.Config
}

// LoadConfigFromEnv loads the process configuration from the environment.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Server hosts the DevSphere HTTP process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	dispatcher      *mail.Dispatcher
	disconnect      func(context.Context) error
	log             *log.Logger
}

// NewServer wires the process from configuration: one pooled database
// client, the auth and catalog services, and the HTTP mux.
//
// Optional collaborators degrade instead of failing startup: without SMTP
// credentials email delivery is disabled, and without asset-host credentials
// event mutations report the misconfiguration per request. The session
// secret and the database stay mandatory.
func NewServer(ctx context.Context, cfg Config, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}

	db, disconnect, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	adminStore, err := authmongo.NewStore(ctx, db)
	if err != nil {
		_ = disconnect(ctx)
		return nil, fmt.Errorf("init admin store: %w", err)
	}
	eventStore, err := eventsmongo.NewStore(ctx, db)
	if err != nil {
		_ = disconnect(ctx)
		return nil, fmt.Errorf("init event store: %w", err)
	}

	sessions, err := session.NewIssuer(cfg.Session, nil)
	if err != nil {
		_ = disconnect(ctx)
		return nil, fmt.Errorf("init session issuer: %w", err)
	}

	var sender mail.Sender
	if smtp, err := mail.NewSMTPSender(cfg.SMTP); err != nil {
		logger.Printf("email delivery disabled: %v", err)
	} else {
		sender = smtp
	}
	dispatcher := mail.NewDispatcher(sender, logger)

	var uploader media.Uploader
	if cld, err := media.NewCloudinaryUploader(cfg.Cloudinary); err != nil {
		logger.Printf("image uploads disabled: %v", err)
		uploader = (*media.CloudinaryUploader)(nil)
	} else {
		uploader = cld
	}

	authService := auth.NewService(adminStore, otp.NewIssuer(cfg.OTP, nil), sessions, dispatcher, nil, nil, logger)
	eventService := events.NewService(eventStore, uploader, nil, nil, logger)

	mux := http.NewServeMux()
	authapi.NewHandler(authService, authapi.NewGoogleUserinfoResolver(), sessions.TTL(), cfg.Session.SecureCookies, logger).RegisterRoutes(mux)
	eventsapi.NewHandler(eventService, sessions, logger).RegisterRoutes(mux)

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           mux,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		dispatcher: dispatcher,
		disconnect: disconnect,
		log:        logger,
	}, nil
}

// Run wires and serves the process until the context ends.
func Run(ctx context.Context, cfg Config, logger *log.Logger) error {
	server, err := NewServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends, then drains
// in-flight requests and pending email deliveries.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}

	serveErr := make(chan error, 1)
	s.log.Printf("listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		s.dispatcher.Wait()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.disconnect != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		if err := s.disconnect(ctx); err != nil {
			s.log.Printf("disconnect database: %v", err)
		}
		cancel()
	}
}
