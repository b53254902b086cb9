// Package apitest is an in-memory fake of the Autoenhance v2 API.
//
// It serves the same endpoints as the real service, issues presigned upload
// URLs that point back at itself, and walks uploaded images through the
// waiting, processing and processed states. Tests can script failures and
// count calls per route.
package apitest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/internal/models"
)

// DefaultAPIKey is accepted when no key is configured.
const DefaultAPIKey = "test-api-key"

// Route patterns, as accepted by FailNext and Calls.
const (
	RouteRegisterImage = "/v2/image"
	RouteImage         = "/v2/image/:id"
	RoutePreview       = "/v2/image/:id/preview"
	RouteEnhanced      = "/v2/image/:id/enhanced"
	RouteProcess       = "/v2/image/:id/process"
	RouteReport        = "/v2/image/:id/report"
	RouteOrder         = "/v2/order/:id"
	RouteUpload        = "/storage/:id"
	RouteHealth        = "/health"
)

// StoredImage is the server side state of one registered image.
type StoredImage struct {
	models.Image

	ContentType string
	Data        []byte
	// StatusReads counts GET image/{id} calls made while processing.
	StatusReads int

	uploadToken string
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey sets the key required in the x-api-key header.
func WithAPIKey(key string) Option {
	return func(s *Server) {
		s.apiKey = key
	}
}

// WithProcessAfter sets how many status reads an uploaded image stays in
// processing before it is reported as processed.
func WithProcessAfter(n int) Option {
	return func(s *Server) {
		s.processAfter = n
	}
}

// WithLogger logs every request at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

type Server struct {
	r      *gin.Engine
	logger *zap.Logger

	apiKey       string
	processAfter int
	now          func() time.Time

	mu       sync.Mutex
	images   map[string]*StoredImage
	orders   map[string][]string
	reports  map[string][]models.ReportRequest
	failures map[string][]int
	calls    map[string]int
}

func New(opts ...Option) *Server {
	s := &Server{
		logger:   zap.NewNop(),
		apiKey:   DefaultAPIKey,
		now:      time.Now,
		images:   make(map[string]*StoredImage),
		orders:   make(map[string][]string),
		reports:  make(map[string][]models.ReportRequest),
		failures: make(map[string][]int),
		calls:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	s.r = gin.New()
	s.r.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal server error",
				Message: http.StatusText(http.StatusInternalServerError),
			})
		}),
		requestLogger(s.logger),
		s.countCalls(),
		s.scriptedFailures(),
	)
	s.routes()

	return s
}

// Handler returns the server's router, e.g. to mount on a real listener.
func (s *Server) Handler() http.Handler {
	return s.r
}

// Start serves the fake on a local port. The caller closes the returned
// server; the API root is its URL plus "/v2/".
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.r)
}

// APIKey returns the key the server accepts.
func (s *Server) APIKey() string {
	return s.apiKey
}

// FailNext makes the next len(statuses) calls to method and route fail with
// the given status codes, in order.
func (s *Server) FailNext(method, route string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := callKey(method, route)
	s.failures[key] = append(s.failures[key], statuses...)
}

// Calls returns how many requests matched method and route, scripted
// failures included.
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[callKey(method, route)]
}

// Image returns a copy of the stored state of an image.
func (s *Server) Image(id string) (StoredImage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return StoredImage{}, false
	}
	out := *img
	out.Data = append([]byte(nil), img.Data...)
	return out, true
}

// MarkProcessed finishes processing an uploaded image immediately.
func (s *Server) MarkProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok || img.Data == nil {
		return false
	}
	img.Status = models.StatusProcessed
	return true
}

// Reports returns the reports filed against an image.
func (s *Server) Reports(id string) []models.ReportRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]models.ReportRequest(nil), s.reports[id]...)
}

func callKey(method, route string) string {
	return method + " " + route
}
