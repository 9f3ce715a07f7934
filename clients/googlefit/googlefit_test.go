package googlefit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	fitness "google.golang.org/api/fitness/v1"
	"google.golang.org/api/option"
)

func newTokenServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func testConfig(tokenURL string) *oauth2.Config {
	conf := NewOAuthConfig("client-id", "client-secret", RedirectURL)
	conf.Endpoint = oauth2.Endpoint{
		AuthURL:   "https://accounts.example.com/auth",
		TokenURL:  tokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
	return conf
}

func TestAuthCodeURL(t *testing.T) {
	conf := NewOAuthConfig("client-id", "client-secret", RedirectURL)
	raw := AuthCodeURL(conf, "state", oauth2.GenerateVerifier())

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, RedirectURL, q.Get("redirect_uri"))
	assert.Equal(t, fitness.FitnessActivityReadScope, q.Get("scope"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
}

func TestExchangeRefreshToken(t *testing.T) {
	srv, calls := newTokenServer(t,
		`{"access_token":"access","token_type":"Bearer","refresh_token":"refresh-123","expires_in":3600}`,
		http.StatusOK,
	)

	token, err := ExchangeRefreshToken(context.Background(), testConfig(srv.URL), "code", oauth2.GenerateVerifier())
	require.NoError(t, err)
	assert.Equal(t, "refresh-123", token)
	assert.Equal(t, int32(1), calls.Load())
}

func TestExchangeRefreshTokenMissing(t *testing.T) {
	srv, _ := newTokenServer(t, `{"access_token":"access","token_type":"Bearer","expires_in":3600}`, http.StatusOK)

	_, err := ExchangeRefreshToken(context.Background(), testConfig(srv.URL), "code", oauth2.GenerateVerifier())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestExchangeRefreshTokenRejected(t *testing.T) {
	srv, _ := newTokenServer(t, `{"error":"invalid_grant"}`, http.StatusBadRequest)

	_, err := ExchangeRefreshToken(context.Background(), testConfig(srv.URL), "bad-code", oauth2.GenerateVerifier())
	assert.Error(t, err)
}

func TestNewGoogleFitClientRequiresRefreshToken(t *testing.T) {
	client, err := NewGoogleFitClient(context.Background(), testConfig("http://127.0.0.1:1"), "")
	assert.Nil(t, client)
	assert.True(t, errors.Is(err, ErrNoRefreshToken))
}

func TestAggregateSteps(t *testing.T) {
	tokenSrv, tokenCalls := newTokenServer(t,
		`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`,
		http.StatusOK,
	)

	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	end := start.Add(9 * time.Hour)

	var got fitness.AggregateRequest
	fitSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/me/dataset:aggregate", r.URL.Path)
		assert.Equal(t, "Bearer access-123", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bucket":[{"dataset":[{"point":[{"value":[{"intVal":8342}]}]}]}]}`))
	}))
	defer fitSrv.Close()

	client, err := NewGoogleFitClient(
		context.Background(),
		testConfig(tokenSrv.URL),
		"refresh-123",
		option.WithEndpoint(fitSrv.URL+"/"),
	)
	require.NoError(t, err)

	resp, err := client.AggregateSteps(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(8342), FirstBucketSteps(resp))
	assert.Equal(t, int32(1), tokenCalls.Load())

	require.Len(t, got.AggregateBy, 1)
	assert.Equal(t, StepCountDataType, got.AggregateBy[0].DataTypeName)
	assert.Equal(t, EstimatedStepsSource, got.AggregateBy[0].DataSourceId)
	require.NotNil(t, got.BucketByTime)
	assert.Equal(t, DayMillis, got.BucketByTime.DurationMillis)
	assert.Equal(t, start.UnixMilli(), got.StartTimeMillis)
	assert.Equal(t, end.UnixMilli(), got.EndTimeMillis)
}

func TestAggregateStepsError(t *testing.T) {
	tokenSrv, _ := newTokenServer(t,
		`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`,
		http.StatusOK,
	)
	fitSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
	}))
	defer fitSrv.Close()

	client, err := NewGoogleFitClient(
		context.Background(),
		testConfig(tokenSrv.URL),
		"refresh-123",
		option.WithEndpoint(fitSrv.URL+"/"),
	)
	require.NoError(t, err)

	now := time.Now()
	_, err = client.AggregateSteps(context.Background(), now.Add(-time.Hour), now)
	assert.Error(t, err)
}
