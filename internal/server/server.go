package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultAddr = ":3000"

// ExchangeFunc trades an authorization code for a refresh token.
type ExchangeFunc func(ctx context.Context, code string) (string, error)

type result struct {
	refreshToken string
	err          error
}

// AuthServer is a one-shot listener for the OAuth redirect. It handles the
// first request carrying a code and then shuts itself down.
type AuthServer struct {
	addr     string
	state    string
	exchange ExchangeFunc

	handled   atomic.Bool
	results   chan result
	closing   chan struct{}
	closeOnce sync.Once
}

// NewAuthServer returns a listener that only accepts redirects carrying state.
func NewAuthServer(addr, state string, exchange ExchangeFunc) *AuthServer {
	if addr == "" {
		addr = DefaultAddr
	}
	return &AuthServer{
		addr:     addr,
		state:    state,
		exchange: exchange,
		results:  make(chan result, 1),
		closing:  make(chan struct{}),
	}
}

// Listen binds the listener so the port is taken before the auth URL is shown.
func (s *AuthServer) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("error listening on %s: %w", s.addr, err)
	}
	return ln, nil
}

// Serve blocks until a code has been exchanged or ctx is done, then shuts the
// listener down. It returns the refresh token or the exchange error.
func (s *AuthServer) Serve(ctx context.Context, ln net.Listener) (string, error) {
	srv := &http.Server{
		Handler:      s.RegisterRoutes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	slog.Info("server is listening", "addr", ln.Addr().String())

	var res result
	select {
	case res = <-s.results:
	case err := <-serveErr:
		res.err = fmt.Errorf("error serving redirect listener: %w", err)
	case <-ctx.Done():
		res.err = ctx.Err()
	}

	s.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("error shutting down redirect listener", "err", err)
	}
	return res.refreshToken, res.err
}

func (s *AuthServer) close() {
	s.closeOnce.Do(func() { close(s.closing) })
}
