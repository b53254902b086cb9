package autoenhance

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// RetryOptions bound the transparent retries of idempotent requests that
// receive 502, 503 or 504.
type RetryOptions struct {
	// Max is the number of retries after the first attempt.
	Max int
	// WaitMin is the first backoff; each further retry doubles it.
	WaitMin time.Duration
	// WaitMax caps a single backoff.
	WaitMax time.Duration
}

// DefaultRetryOptions returns 5 retries backing off 1s, 2s, 4s, 8s, 16s.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		Max:     5,
		WaitMin: time.Second,
		WaitMax: 120 * time.Second,
	}
}

func (o RetryOptions) withDefaults() RetryOptions {
	d := DefaultRetryOptions()
	if o == (RetryOptions{}) {
		return d
	}
	if o.WaitMin <= 0 {
		o.WaitMin = d.WaitMin
	}
	if o.WaitMax < o.WaitMin {
		o.WaitMax = d.WaitMax
		if o.WaitMax < o.WaitMin {
			o.WaitMax = o.WaitMin
		}
	}
	return o
}

var retryStatuses = map[int]bool{
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
}

var idempotentMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

func newRetryClient(base *http.Client, opts RetryOptions, logger *zap.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = base
	rc.RetryMax = opts.Max
	rc.RetryWaitMin = opts.WaitMin
	rc.RetryWaitMax = opts.WaitMax
	rc.CheckRetry = checkRetry
	rc.Backoff = exponentialBackoff
	// Hand the last response back to the caller once retries are exhausted.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = retryLogger{logger.Named("transport").Sugar()}
	return rc.StandardClient()
}

// checkRetry retries 502/503/504 for idempotent methods, and dial failures
// for any method since those requests never reached the server.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return isDialError(err), nil
	}
	if !retryStatuses[resp.StatusCode] {
		return false, nil
	}
	if resp.Request == nil {
		return false, nil
	}
	return idempotentMethods[resp.Request.Method], nil
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// exponentialBackoff waits waitMin * 2^attempt, capped at waitMax. A shorter
// Retry-After on 503 wins.
func exponentialBackoff(waitMin, waitMax time.Duration, attempt int, resp *http.Response) time.Duration {
	if resp != nil && resp.StatusCode == http.StatusServiceUnavailable {
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
				if d := time.Duration(secs) * time.Second; d <= waitMax {
					return d
				}
			}
		}
	}

	if attempt > 30 {
		return waitMax
	}
	wait := waitMin << uint(attempt)
	if wait <= 0 || wait > waitMax {
		return waitMax
	}
	return wait
}

// retryLogger adapts zap to retryablehttp.LeveledLogger.
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}

var _ retryablehttp.LeveledLogger = retryLogger{}
