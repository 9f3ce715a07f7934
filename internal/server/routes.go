package server

import (
	"context"
	"log/slog"
	"net/http"
)

const (
	successMessage = "Authentication successful! Please check your console."
	failureMessage = "Authentication failed."
	stateMessage   = "Invalid state parameter."
)

func (s *AuthServer) RegisterRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.RedirectHandler)
	return mux
}

// RedirectHandler exchanges the code from the OAuth redirect. Requests without
// a code, or arriving after one was handled, get no response until shutdown.
// A code with the wrong state is rejected and the listener keeps waiting.
func (s *AuthServer) RedirectHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	if code != "" && q.Get("state") != s.state {
		slog.Warn("rejecting redirect with unexpected state")
		http.Error(w, stateMessage, http.StatusBadRequest)
		return
	}
	if code == "" || !s.handled.CompareAndSwap(false, true) {
		slog.Debug("ignoring request", "path", r.URL.Path)
		select {
		case <-s.closing:
		case <-r.Context().Done():
		}
		return
	}

	token, err := s.exchange(context.WithoutCancel(r.Context()), code)
	if err != nil {
		http.Error(w, failureMessage, http.StatusInternalServerError)
		s.results <- result{err: err}
		return
	}

	_, _ = w.Write([]byte(successMessage))
	s.results <- result{refreshToken: token}
}
