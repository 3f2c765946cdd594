// Package lifecycle runs an HTTP server next to a background service and
// handles graceful shutdown.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/net/netutil"
)

const (
	ShutdownTimeout   = 10 * time.Second
	ReadHeaderTimeout = 10 * time.Second
)

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for creating a server.
type ServerOptions struct {
	ListenAddr      string
	ServiceName     string
	Handler         http.Handler
	Service         Service
	TLSCertFile     string
	TLSKeyFile      string
	MaxConnections  int // 0 means unlimited
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// OnListen, when set, is called with the bound address before serving.
	OnListen func(net.Addr)
}

// RunServer starts a service with the provided options and handles lifecycle.
// It returns nil after a signal or context cancellation and the serve or
// service error otherwise.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("*** Starting service %s", opts.ServiceName)

	ln, err := listen(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           opts.Handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
	}

	// Create error channel for service errors
	errChan := make(chan error, 2)

	if opts.Service != nil {
		if err := opts.Service.Start(ctx); err != nil {
			_ = ln.Close()

			return fmt.Errorf("failed to start service: %w", err)
		}
	}

	if opts.OnListen != nil {
		opts.OnListen(ln.Addr())
	}

	go func() {
		if err := serve(srv, ln, opts); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- err:
			default:
				log.Printf("HTTP server error: %v", err)
			}
		}
	}()

	return handleShutdown(ctx, cancel, srv, opts, errChan)
}

func listen(opts *ServerOptions) (net.Listener, error) {
	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.ListenAddr, err)
	}

	if opts.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, opts.MaxConnections)
	}

	return ln, nil
}

func serve(srv *http.Server, ln net.Listener, opts *ServerOptions) error {
	if opts.TLSCertFile != "" && opts.TLSKeyFile != "" {
		log.Printf("Starting HTTPS server on %s", ln.Addr())

		return srv.ServeTLS(ln, opts.TLSCertFile, opts.TLSKeyFile)
	}

	log.Printf("Starting HTTP server on %s", ln.Addr())

	return srv.Serve(ln)
}

func handleShutdown(
	ctx context.Context, cancel context.CancelFunc, srv *http.Server, opts *ServerOptions, errChan chan error) error {
	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var runErr error

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		log.Printf("Received error: %v, initiating shutdown", err)
		runErr = fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Printf("Context canceled, initiating shutdown")
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = ShutdownTimeout
	}

	// Create timeout context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	// Cancel main context
	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during HTTP server shutdown: %v", err)

		if runErr == nil {
			runErr = fmt.Errorf("shutdown error: %w", err)
		}
	}

	// Stop the service
	if opts.Service != nil {
		if err := opts.Service.Stop(shutdownCtx); err != nil {
			log.Printf("Error during service shutdown: %v", err)

			if runErr == nil {
				runErr = fmt.Errorf("shutdown error: %w", err)
			}
		}
	}

	log.Printf("*** Service %s stopped", opts.ServiceName)

	return runErr
}
