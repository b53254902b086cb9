package autoenhance

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoff(t *testing.T) {
	lo, hi := time.Second, 10*time.Second

	assert.Equal(t, time.Second, exponentialBackoff(lo, hi, 0, nil))
	assert.Equal(t, 2*time.Second, exponentialBackoff(lo, hi, 1, nil))
	assert.Equal(t, 8*time.Second, exponentialBackoff(lo, hi, 3, nil))
	assert.Equal(t, hi, exponentialBackoff(lo, hi, 4, nil))
	assert.Equal(t, hi, exponentialBackoff(lo, hi, 64, nil))
}

func TestExponentialBackoff_RetryAfter(t *testing.T) {
	lo, hi := time.Second, 10*time.Second
	resp := &http.Response{StatusCode: http.StatusServiceUnavailable, Header: http.Header{}}

	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 3*time.Second, exponentialBackoff(lo, hi, 0, resp))

	resp.Header.Set("Retry-After", "3600")
	assert.Equal(t, time.Second, exponentialBackoff(lo, hi, 0, resp))

	resp.StatusCode = http.StatusBadGateway
	resp.Header.Set("Retry-After", "3")
	assert.Equal(t, 2*time.Second, exponentialBackoff(lo, hi, 1, resp))
}

func TestCheckRetry(t *testing.T) {
	get := &http.Request{Method: http.MethodGet}
	post := &http.Request{Method: http.MethodPost}
	put := &http.Request{Method: http.MethodPut}
	ctx := context.Background()

	tests := []struct {
		name string
		resp *http.Response
		err  error
		want bool
	}{
		{name: "get 503", resp: &http.Response{StatusCode: 503, Request: get}, want: true},
		{name: "get 502", resp: &http.Response{StatusCode: 502, Request: get}, want: true},
		{name: "put 504", resp: &http.Response{StatusCode: 504, Request: put}, want: true},
		{name: "get 500", resp: &http.Response{StatusCode: 500, Request: get}},
		{name: "get 429", resp: &http.Response{StatusCode: 429, Request: get}},
		{name: "post 503", resp: &http.Response{StatusCode: 503, Request: post}},
		{name: "get 200", resp: &http.Response{StatusCode: 200, Request: get}},
		{name: "dial error", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: true},
		{name: "read error", err: &net.OpError{Op: "read", Err: errors.New("connection reset")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkRetry(ctx, tt.resp, tt.err)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	retry, err := checkRetry(ctx, &http.Response{StatusCode: 503, Request: &http.Request{Method: http.MethodGet}}, nil)
	assert.False(t, retry)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryOptions_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultRetryOptions(), RetryOptions{}.withDefaults())

	noRetry := RetryOptions{Max: 0, WaitMin: time.Millisecond}.withDefaults()
	assert.Equal(t, 0, noRetry.Max)
	assert.Equal(t, time.Millisecond, noRetry.WaitMin)
	assert.Equal(t, 120*time.Second, noRetry.WaitMax)
}
