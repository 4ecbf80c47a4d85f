package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownHook releases a resource after the server stopped, e.g. the
// database pool or the rate limiter
type ShutdownHook func(ctx context.Context) error

// GracefulShutdown serves until a signal arrives or the context ends, then
// drains requests and runs the registered hooks in order
type GracefulShutdown struct {
	server  *Server
	timeout time.Duration
	signals []os.Signal
	logger  *zap.Logger

	mu    sync.Mutex
	hooks []ShutdownHook

	once sync.Once
	done chan struct{}
	err  error
}

// ShutdownConfig holds graceful shutdown configuration
type ShutdownConfig struct {
	Timeout time.Duration
	// Signals default to SIGINT and SIGTERM
	Signals []os.Signal
	Logger  *zap.Logger
}

// DefaultShutdownConfig returns default shutdown configuration
func DefaultShutdownConfig() *ShutdownConfig {
	return &ShutdownConfig{
		Timeout: 30 * time.Second,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Logger:  zap.NewNop(),
	}
}

// NewGracefulShutdown creates a new graceful shutdown handler
func NewGracefulShutdown(server *Server, config *ShutdownConfig) *GracefulShutdown {
	if config == nil {
		config = DefaultShutdownConfig()
	}

	gs := &GracefulShutdown{
		server:  server,
		timeout: config.Timeout,
		signals: config.Signals,
		logger:  config.Logger,
		done:    make(chan struct{}),
	}
	if gs.logger == nil {
		gs.logger = zap.NewNop()
	}
	if len(gs.signals) == 0 {
		gs.signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	if gs.timeout <= 0 {
		gs.timeout = 30 * time.Second
	}
	return gs
}

// RegisterHook adds a hook run during shutdown
func (gs *GracefulShutdown) RegisterHook(hook ShutdownHook) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.hooks = append(gs.hooks, hook)
}

// Run serves until ctx is done or a shutdown signal arrives and then shuts
// down. A server that fails to start returns its error without running hooks.
func (gs *GracefulShutdown) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, gs.signals...)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return gs.Wait()
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		gs.logger.Info("shutdown signal received")
		return gs.Shutdown()
	}
}

// Shutdown drains the server and runs the hooks. Only the first call does
// the work; later calls wait for it and return the same error.
func (gs *GracefulShutdown) Shutdown() error {
	gs.once.Do(func() {
		defer close(gs.done)

		gs.logger.Info("shutting down", zap.Duration("timeout", gs.timeout))
		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()

		if err := gs.server.Shutdown(ctx); err != nil {
			gs.err = fmt.Errorf("server shutdown error: %w", err)
			gs.logger.Error("server shutdown failed", zap.Error(err))
		}

		gs.mu.Lock()
		hooks := make([]ShutdownHook, len(gs.hooks))
		copy(hooks, gs.hooks)
		gs.mu.Unlock()

		for i, hook := range hooks {
			if err := hook(ctx); err != nil {
				gs.logger.Warn("shutdown hook failed", zap.Int("hook", i), zap.Error(err))
			}
		}

		gs.logger.Info("shutdown complete")
	})

	<-gs.done
	return gs.err
}

// Wait blocks until shutdown is complete
func (gs *GracefulShutdown) Wait() error {
	<-gs.done
	return gs.err
}
