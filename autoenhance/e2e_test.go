package autoenhance_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
	"github.com/instant-hdr/autoenhance-go/internal/apitest"
)

func newFakeClient(t *testing.T, opts ...apitest.Option) (*autoenhance.Client, *apitest.Server) {
	t.Helper()
	fake := apitest.New(opts...)
	ts := fake.Start()
	t.Cleanup(ts.Close)

	client, err := autoenhance.NewClient(autoenhance.Config{
		APIKey:  fake.APIKey(),
		BaseURL: ts.URL + "/v2/",
		Logger:  zaptest.NewLogger(t),
		Retry:   fastRetry(),
		Poll:    fastPoll(),
	})
	require.NoError(t, err)
	return client, fake
}

func TestFakeAPI_UploadWaitDownload(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeClient(t, apitest.WithProcessAfter(2))

	orderID := autoenhance.NewOrderID()
	uploaded, err := client.UploadImage(ctx, autoenhance.UploadRequest{
		Name:    "house.jpg",
		Image:   []byte("raw-pixels"),
		OrderID: orderID,
	})
	require.NoError(t, err)
	require.True(t, uploaded.OK(), string(uploaded.Message))
	assert.Equal(t, orderID, uploaded.OrderID)

	stored, ok := fake.Image(uploaded.ImageID)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", stored.ContentType)
	assert.Equal(t, []byte("raw-pixels"), stored.Data)

	record, err := client.WaitForImage(ctx, uploaded.ImageID)
	require.NoError(t, err)
	assert.True(t, record.IsProcessed())
	assert.Equal(t, 3, fake.Calls(http.MethodGet, apitest.RouteImage))

	preview, err := client.PreviewImage(ctx, uploaded.ImageID)
	require.NoError(t, err)
	assert.Equal(t, []byte("raw-pixels"), preview.Image)

	order, err := client.CheckOrderStatus(ctx, orderID)
	require.NoError(t, err)
	assert.False(t, order.IsProcessing)
	require.Len(t, order.Images, 1)
	assert.Equal(t, uploaded.ImageID, order.Images[0].ImageID)

	report, err := client.ReportEnhancement(ctx, uploaded.ImageID, []autoenhance.ReportCategory{autoenhance.ReportWhiteBalance}, "too blue")
	require.NoError(t, err)
	assert.True(t, report.OK())
	reports := fake.Reports(uploaded.ImageID)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"white_balance"}, reports[0].Category)
}

func TestFakeAPI_PreviewBeforeProcessed(t *testing.T) {
	ctx := context.Background()
	client, _ := newFakeClient(t, apitest.WithProcessAfter(5))

	uploaded, err := client.UploadImage(ctx, autoenhance.UploadRequest{Name: "house.png", Image: []byte("png")})
	require.NoError(t, err)

	preview, err := client.PreviewImage(ctx, uploaded.ImageID)
	require.NoError(t, err)
	assert.False(t, preview.OK())
	assert.Equal(t, http.StatusNotFound, preview.StatusCode)
	assert.Equal(t, "image not processed", preview.Failure.Message)
}

func TestFakeAPI_RetriesGatewayErrors(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeClient(t)

	uploaded, err := client.UploadImage(ctx, autoenhance.UploadRequest{Name: "house.jpg", Image: []byte("x")})
	require.NoError(t, err)

	fake.FailNext(http.MethodGet, apitest.RouteImage, http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusServiceUnavailable)
	record, err := client.CheckImageStatus(ctx, uploaded.ImageID)
	require.NoError(t, err)
	assert.Equal(t, uploaded.ImageID, record.ImageID)
	assert.Equal(t, 4, fake.Calls(http.MethodGet, apitest.RouteImage))
}

func TestFakeAPI_RegistrationNotRetried(t *testing.T) {
	client, fake := newFakeClient(t)
	fake.FailNext(http.MethodPost, apitest.RouteRegisterImage, http.StatusBadGateway)

	result, err := client.UploadImage(context.Background(), autoenhance.UploadRequest{Name: "house.jpg", Image: []byte("x")})
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	assert.Equal(t, 1, fake.Calls(http.MethodPost, apitest.RouteRegisterImage))
}

func TestFakeAPI_WrongKey(t *testing.T) {
	fake := apitest.New()
	ts := fake.Start()
	defer ts.Close()

	client, err := autoenhance.NewClient(autoenhance.Config{APIKey: "nope", BaseURL: ts.URL + "/v2/"})
	require.NoError(t, err)

	result, err := client.UploadImage(context.Background(), autoenhance.UploadRequest{Name: "house.jpg", Image: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	assert.JSONEq(t, `{"error":"invalid api key"}`, string(result.Message))
}

func TestFakeAPI_EditEnhancement(t *testing.T) {
	ctx := context.Background()
	client, fake := newFakeClient(t)

	opts := autoenhance.DefaultEnhancementOptions()
	opts.HDR = true
	uploaded, err := client.UploadImage(ctx, autoenhance.UploadRequest{Name: "house.jpg", Image: []byte("x"), Options: &opts})
	require.NoError(t, err)

	opts.SkyReplacement = false
	opts.ContrastBoost = autoenhance.ContrastNone
	edited, err := client.EditEnhancement(ctx, uploaded.ImageID, opts)
	require.NoError(t, err)
	assert.True(t, edited.OK())

	stored, _ := fake.Image(uploaded.ImageID)
	assert.False(t, stored.SkyReplacement)
	assert.Nil(t, stored.ContrastBoost)
	assert.True(t, stored.HDR)
}
