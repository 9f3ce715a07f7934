package googlefit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	fitness "google.golang.org/api/fitness/v1"
	"google.golang.org/api/option"
)

const RedirectURL = "http://localhost:3000"

var ErrNoRefreshToken = errors.New("no refresh token")

type GoogleFitClient struct {
	svc *fitness.Service
}

func NewOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{fitness.FitnessActivityReadScope},
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
	}
}

// AuthCodeURL builds the consent URL. prompt=consent makes Google hand out a
// refresh token even if the user already granted access once.
func AuthCodeURL(conf *oauth2.Config, state, verifier string) string {
	return conf.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
}

// ExchangeRefreshToken trades an authorization code for tokens and returns
// only the refresh token.
func ExchangeRefreshToken(ctx context.Context, conf *oauth2.Config, code, verifier string) (string, error) {
	token, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("error exchanging auth code: %w", err)
	}
	if token.RefreshToken == "" {
		return "", fmt.Errorf("error exchanging auth code: %w", ErrNoRefreshToken)
	}
	return token.RefreshToken, nil
}

// NewGoogleFitClient returns a client whose access tokens are minted from the
// refresh token on demand. opts are passed through to the fitness service.
func NewGoogleFitClient(
	ctx context.Context,
	conf *oauth2.Config,
	refreshToken string,
	opts ...option.ClientOption,
) (*GoogleFitClient, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	ts := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	opts = append([]option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}, opts...)

	svc, err := fitness.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating fitness service: %w", err)
	}
	return &GoogleFitClient{svc: svc}, nil
}

// AggregateSteps asks for estimated step counts between start and end,
// bucketed into 24 hour windows.
func (g *GoogleFitClient) AggregateSteps(ctx context.Context, start, end time.Time) (*fitness.AggregateResponse, error) {
	req := &fitness.AggregateRequest{
		AggregateBy: []*fitness.AggregateBy{
			{
				DataTypeName: StepCountDataType,
				DataSourceId: EstimatedStepsSource,
			},
		},
		BucketByTime:    &fitness.BucketByTime{DurationMillis: DayMillis},
		StartTimeMillis: start.UnixMilli(),
		EndTimeMillis:   end.UnixMilli(),
	}

	resp, err := g.svc.Users.Dataset.Aggregate("me", req).Context(ctx).Do()
	if err != nil {
		slog.Error("error making aggregate request to google fit", "err", err)
		return nil, fmt.Errorf("error making aggregate request to google fit: %w", err)
	}
	slog.Debug("got aggregate response", "start", start, "end", end, "buckets", len(resp.Bucket))
	return resp, nil
}
