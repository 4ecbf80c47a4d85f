// Package server runs the generated API on net/http with graceful shutdown.
package server

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Server wraps an http.Server configured for the generated routes
type Server struct {
	httpServer *http.Server
	config     *Config
	logger     *zap.Logger

	mu       sync.Mutex
	listener net.Listener
}

// Config holds server configuration
type Config struct {
	// Address is the listen address, e.g. "localhost:3000"
	Address string
	Handler http.Handler

	// TLS enables HTTPS when set
	TLS *TLSConfig

	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int

	// Database is the pool of the SQL store, if any
	Database *DatabaseConfig

	Logger *zap.Logger
}

// TLSConfig holds the certificate of an HTTPS listener
type TLSConfig struct {
	CertFile string
	KeyFile  string
	// MinVersion defaults to TLS 1.2
	MinVersion uint16
}

// DatabaseConfig holds database connection pool configuration
type DatabaseConfig struct {
	DB              *sql.DB
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the server configuration used when nothing is configured
func DefaultConfig(handler http.Handler) *Config {
	return &Config{
		Address:           "localhost:3000",
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// New creates a server. A configured database pool is sized and pinged.
func New(config *Config) (*Server, error) {
	if config == nil {
		return nil, errors.New("server config cannot be nil")
	}
	if config.Handler == nil {
		return nil, errors.New("handler cannot be nil")
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.Database != nil {
		if err := configurePool(config.Database); err != nil {
			return nil, fmt.Errorf("failed to configure database pool: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:              config.Address,
		Handler:           config.Handler,
		ReadTimeout:       config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		MaxHeaderBytes:    config.MaxHeaderBytes,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}
	if config.TLS != nil {
		httpServer.TLSConfig = buildTLSConfig(config.TLS)
	}

	return &Server{httpServer: httpServer, config: config, logger: logger}, nil
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns http.ErrServerClosed after a shutdown.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	return s.Serve(l)
}

// Serve accepts connections on l
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	s.logger.Info("server listening",
		zap.String("address", l.Addr().String()),
		zap.Bool("tls", s.config.TLS != nil),
	)

	if s.config.TLS != nil {
		return s.httpServer.ServeTLS(l, s.config.TLS.CertFile, s.config.TLS.KeyFile)
	}
	return s.httpServer.Serve(l)
}

// Shutdown stops accepting connections and waits for active requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Close immediately closes the server
func (s *Server) Close() error {
	return s.httpServer.Close()
}

// Addr returns the bound address once serving, the configured one before
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address
}

func configurePool(config *DatabaseConfig) error {
	if config.DB == nil {
		return errors.New("database connection cannot be nil")
	}

	config.DB.SetMaxOpenConns(config.MaxOpenConns)
	config.DB.SetMaxIdleConns(config.MaxIdleConns)
	config.DB.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := config.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

func buildTLSConfig(c *TLSConfig) *tls.Config {
	minVersion := c.MinVersion
	if minVersion == 0 {
		minVersion = tls.VersionTLS12
	}
	return &tls.Config{
		MinVersion: minVersion,
		NextProtos: []string{"h2", "http/1.1"},
	}
}
