package apitest

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/instant-hdr/autoenhance-go/internal/models"
)

const (
	storagePath        = "/storage"
	defaultEnhanceType = "property"
	fakeUserID         = "apitest-user"
)

func (s *Server) routes() {
	s.r.GET(RouteHealth, healthHandler)
	s.r.PUT(RouteUpload, s.uploadObject)

	v2 := s.r.Group("/v2")
	v2.Use(apiKeyAuth(s.apiKey))
	{
		v2.POST("/image", s.registerImage)
		v2.GET("/image/:id", s.getImage)
		v2.GET("/image/:id/preview", s.previewImage)
		v2.GET("/image/:id/enhanced", s.enhancedImage)
		v2.POST("/image/:id/process", s.processImage)
		v2.POST("/image/:id/report", s.reportImage)
		v2.GET("/order/:id", s.getOrder)
	}

	s.r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	})
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}

func (s *Server) registerImage(c *gin.Context) {
	var req models.RegisterImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: err.Error(),
		})
		return
	}

	imageID := uuid.NewString()
	orderID := uuid.NewString()
	if req.OrderID != nil && *req.OrderID != "" {
		orderID = *req.OrderID
	}
	enhanceType := defaultEnhanceType
	if req.EnhanceType != nil && *req.EnhanceType != "" {
		enhanceType = *req.EnhanceType
	}
	token := uuid.NewString()

	img := &StoredImage{
		Image: models.Image{
			ImageID:     imageID,
			OrderID:     orderID,
			ImageName:   req.ImageName,
			ImageType:   strings.TrimPrefix(req.ContentType, "image/"),
			EnhanceType: enhanceType,
			DateAdded:   s.now().UnixMilli(),
			UserID:      fakeUserID,
			Status:      models.StatusWaiting,
		},
		ContentType: req.ContentType,
		uploadToken: token,
	}
	applyOptions(&img.Image, req.EnhancementOptions, true)

	s.mu.Lock()
	s.images[imageID] = img
	s.orders[orderID] = append(s.orders[orderID], imageID)
	s.mu.Unlock()

	c.JSON(http.StatusOK, models.RegisterImageResponse{
		UploadURL: uploadURL(c.Request, imageID, token),
		ImageID:   imageID,
		OrderID:   orderID,
	})
}

// uploadObject stands in for the storage bucket behind the presigned URL. It
// checks the signature, not the API key.
func (s *Server) uploadObject(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read body", Message: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "NoSuchKey"})
		return
	}
	if c.Query("signature") != img.uploadToken {
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: "SignatureDoesNotMatch"})
		return
	}

	if ct := c.GetHeader("Content-Type"); ct != "" {
		img.ContentType = ct
	}
	img.Data = data
	if img.Status == models.StatusWaiting {
		img.Status = models.StatusProcessing
	}
	c.Status(http.StatusOK)
}

func (s *Server) getImage(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not found"})
		return
	}

	if img.Status == models.StatusProcessing {
		img.StatusReads++
		if img.StatusReads > s.processAfter {
			img.Status = models.StatusProcessed
		}
	}
	c.JSON(http.StatusOK, img.Image)
}

func (s *Server) previewImage(c *gin.Context) {
	s.serveImage(c, false)
}

func (s *Server) enhancedImage(c *gin.Context) {
	s.serveImage(c, true)
}

func (s *Server) serveImage(c *gin.Context, markDownloaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not found"})
		return
	}
	if img.Status != models.StatusProcessed {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "image not processed",
			Message: "status is " + img.Status,
		})
		return
	}

	if markDownloaded {
		img.Downloaded = true
	}
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (s *Server) processImage(c *gin.Context) {
	var opts models.EnhancementOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not found"})
		return
	}
	if img.Data == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not uploaded"})
		return
	}

	applyOptions(&img.Image, opts, false)
	img.Status = models.StatusProcessed
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (s *Server) reportImage(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	if _, ok := s.images[id]; !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "image not found"})
		return
	}
	s.reports[id] = append(s.reports[id], req)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "report received"})
}

func (s *Server) getOrder(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID := c.Param("id")
	ids, ok := s.orders[orderID]
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "order not found"})
		return
	}

	order := models.Order{OrderID: orderID, Images: make([]models.Image, 0, len(ids))}
	for _, id := range ids {
		img := s.images[id]
		order.Images = append(order.Images, img.Image)
		if img.Status != models.StatusProcessed {
			order.IsProcessing = true
		}
	}
	c.JSON(http.StatusOK, order)
}

// applyOptions copies processing switches onto an image record. HDR is only
// set at registration.
func applyOptions(img *models.Image, opts models.EnhancementOptions, withHDR bool) {
	img.VerticalCorrection = opts.VerticalCorrection
	img.SkyReplacement = opts.SkyReplacement
	img.SkyType = opts.SkyType
	img.CloudType = opts.CloudType
	img.ContrastBoost = opts.ContrastBoost
	img.ThreeSixty = opts.ThreeSixty
	if withHDR {
		img.HDR = opts.HDR
	}
}

func uploadURL(r *http.Request, imageID, token string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s/%s?signature=%s", scheme, r.Host, storagePath, imageID, token)
}
