// Package source loads image bytes from a local path or an http(s) URL.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// StatusError is returned when a URL answers with anything but 200.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code fetching %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Reader fetches sources. Concurrent reads of the same URL share one request
// and each caller gets its own copy of the bytes. The shared request is not
// cancelled when one caller gives up; bound it with the client's Timeout.
type Reader struct {
	client *http.Client
	logger *zap.Logger
	group  singleflight.Group
}

func NewReader(client *http.Client, logger *zap.Logger) *Reader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{client: client, logger: logger}
}

// Read is a one-off NewReader(client, nil).Read.
func Read(ctx context.Context, client *http.Client, pathOrURL string) ([]byte, error) {
	return NewReader(client, nil).Read(ctx, pathOrURL)
}

// Read returns the bytes at pathOrURL: http and https URLs are downloaded,
// anything else is read from disk.
func (r *Reader) Read(ctx context.Context, pathOrURL string) ([]byte, error) {
	if !IsHTTP(pathOrURL) {
		data, err := os.ReadFile(pathOrURL)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", pathOrURL, err)
		}
		return data, nil
	}

	ch := r.group.DoChan(pathOrURL, func() (interface{}, error) {
		return r.download(context.WithoutCancel(ctx), pathOrURL)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		data := res.Val.([]byte)
		if res.Shared {
			data = append([]byte(nil), data...)
		}
		return data, nil
	}
}

func (r *Reader) download(ctx context.Context, rawURL string) (data []byte, retErr error) {
	r.logger.Debug("downloading source", zap.String("url", rawURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			retErr = errors.Join(retErr, closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	r.logger.Debug("source downloaded", zap.String("url", rawURL), zap.Int("bytes", len(data)))
	return data, nil
}

// IsHTTP reports whether raw is an http or https URL.
func IsHTTP(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// NameFor derives an image name from a path or URL, e.g. house.jpg for
// https://example.com/photos/house.jpg?x=1.
func NameFor(pathOrURL string) string {
	if IsHTTP(pathOrURL) {
		u, _ := url.Parse(pathOrURL)
		name := path.Base(u.Path)
		if name == "/" || name == "." || name == "" {
			return u.Host
		}
		return name
	}
	return filepath.Base(pathOrURL)
}
