package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/oauth2"

	"stepcount/clients/googlefit"
	"stepcount/internal/config"
	"stepcount/internal/server"
)

var (
	urlStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("31"))
	tokenStyle = lipgloss.NewStyle().Bold(true)
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// runAuth walks the user through the consent screen and prints the refresh
// token. It returns once the redirect has been handled.
func runAuth(ctx context.Context, cfg *config.Config, addr string, out io.Writer) error {
	conf := googlefit.NewOAuthConfig(cfg.ClientID, cfg.ClientSecret, googlefit.RedirectURL)
	verifier := oauth2.GenerateVerifier()
	// 32 random bytes, url-safe; reused as the CSRF state
	state := oauth2.GenerateVerifier()

	srv := server.NewAuthServer(addr, state, func(_ context.Context, code string) (string, error) {
		return googlefit.ExchangeRefreshToken(context.WithoutCancel(ctx), conf, code, verifier)
	})
	ln, err := srv.Listen()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Authorize this app by visiting this url:")
	fmt.Fprintln(out, urlStyle.Render(googlefit.AuthCodeURL(conf, state, verifier)))
	fmt.Fprintln(out, noteStyle.Render(fmt.Sprintf(
		"NOTE: Make sure to add %s to your authorized redirect URIs in the Google Cloud Console.",
		googlefit.RedirectURL,
	)))

	token, err := srv.Serve(ctx, ln)
	if err != nil {
		return fmt.Errorf("error getting refresh token: %w", err)
	}

	fmt.Fprintln(out, "Your refresh token is:", tokenStyle.Render(token))
	fmt.Fprintf(out, "Please save it in your .env file as %s\n", config.EnvRefreshToken)
	return nil
}
