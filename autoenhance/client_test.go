package autoenhance_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
	"github.com/instant-hdr/autoenhance-go/internal/logging"
)

const testAPIKey = "test-api-key"

func fastRetry() autoenhance.RetryOptions {
	return autoenhance.RetryOptions{Max: 5, WaitMin: time.Millisecond, WaitMax: 10 * time.Millisecond}
}

func fastPoll() autoenhance.PollOptions {
	return autoenhance.PollOptions{Interval: time.Millisecond, MaxAttempts: 10, Timeout: 2 * time.Second}
}

// newTestClient serves mux under /v2/ and returns a client pointed at it.
func newTestClient(t *testing.T, mux *http.ServeMux) (*autoenhance.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := autoenhance.NewClient(autoenhance.Config{
		APIKey:  testAPIKey,
		BaseURL: server.URL + "/v2/",
		Retry:   fastRetry(),
		Poll:    fastPoll(),
	})
	require.NoError(t, err)
	return client, server
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     autoenhance.Config
		wantErr bool
	}{
		{name: "valid", cfg: autoenhance.Config{APIKey: "key"}},
		{name: "valid with base url", cfg: autoenhance.Config{APIKey: "key", BaseURL: "http://localhost:8080/v2/"}},
		{name: "missing key", cfg: autoenhance.Config{}, wantErr: true},
		{name: "blank key", cfg: autoenhance.Config{APIKey: "   "}, wantErr: true},
		{name: "relative base url", cfg: autoenhance.Config{APIKey: "key", BaseURL: "/v2/"}, wantErr: true},
		{name: "negative retries", cfg: autoenhance.Config{APIKey: "key", Retry: autoenhance.RetryOptions{Max: -1}}, wantErr: true},
		{name: "negative poll", cfg: autoenhance.Config{APIKey: "key", Poll: autoenhance.PollOptions{Interval: -time.Second}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	_, err := autoenhance.NewClient(autoenhance.Config{})
	assert.ErrorIs(t, err, autoenhance.ErrMissingAPIKey)
}

func TestNewClient_BaseURL(t *testing.T) {
	client, err := autoenhance.NewClient(autoenhance.Config{APIKey: "key"})
	require.NoError(t, err)
	assert.Equal(t, autoenhance.DefaultBaseURL, client.BaseURL())

	client, err = autoenhance.NewClient(autoenhance.Config{APIKey: "key", BaseURL: "http://localhost:9000/v2"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/v2/", client.BaseURL())
}

func TestClient_SendsAPIKey(t *testing.T) {
	var gotKey string
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/image/abc", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Write([]byte(`{"image_id":"abc","status":"processing"}`))
	})
	client, _ := newTestClient(t, mux)

	_, err := client.CheckImageStatus(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, testAPIKey, gotKey)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	baseURL := server.URL + "/v2/"
	server.Close()

	client, err := autoenhance.NewClient(autoenhance.Config{
		APIKey:  testAPIKey,
		BaseURL: baseURL,
		Retry:   autoenhance.RetryOptions{Max: 1, WaitMin: time.Millisecond, WaitMax: time.Millisecond},
	})
	require.NoError(t, err)

	_, err = client.CheckImageStatus(context.Background(), "abc")
	require.Error(t, err)

	var opErr *logging.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "autoenhance.check_image_status", opErr.Operation)
	assert.Equal(t, "abc", opErr.ResourceID)
}

func TestClient_EscapesResourceIDs(t *testing.T) {
	var paths, queries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		queries = append(queries, r.URL.RawQuery)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	})
	client, _ := newTestClient(t, mux)
	ctx := context.Background()
	const id = "a/b?c"

	_, err := client.CheckImageStatus(ctx, id)
	var apiErr *autoenhance.APIError
	require.ErrorAs(t, err, &apiErr)

	_, err = client.CheckOrderStatus(ctx, id)
	require.ErrorAs(t, err, &apiErr)

	_, err = client.PreviewImage(ctx, id)
	require.NoError(t, err)
	_, err = client.WebOptimisedImage(ctx, id)
	require.NoError(t, err)
	_, err = client.FullResolutionImage(ctx, id)
	require.NoError(t, err)
	_, err = client.EditEnhancement(ctx, id, autoenhance.DefaultEnhancementOptions())
	require.NoError(t, err)
	_, err = client.ReportEnhancement(ctx, id, nil, "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/v2/image/a%2Fb%3Fc",
		"/v2/order/a%2Fb%3Fc",
		"/v2/image/a%2Fb%3Fc/preview",
		"/v2/image/a%2Fb%3Fc/enhanced",
		"/v2/image/a%2Fb%3Fc/enhanced",
		"/v2/image/a%2Fb%3Fc/process",
		"/v2/image/a%2Fb%3Fc/report",
	}, paths)
	assert.Equal(t, []string{"", "", "", "size=small", "", "", ""}, queries)
}
