package autoenhance_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
)

func TestReportEnhancement(t *testing.T) {
	var body []byte
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/image/abc/report", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"ok":true}`))
	})
	client, _ := newTestClient(t, mux)

	result, err := client.ReportEnhancement(context.Background(), "abc",
		[]autoenhance.ReportCategory{autoenhance.ReportHDR, autoenhance.ReportSkyReplacement}, "sky looks fake")
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.JSONEq(t, `{"category":["hdr","sky_replacement"],"comment":"sky looks fake"}`, string(body))
}

func TestReportEnhancement_NoCategoriesNoComment(t *testing.T) {
	var body []byte
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/image/abc/report", func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	})
	client, _ := newTestClient(t, mux)

	_, err := client.ReportEnhancement(context.Background(), "abc", nil, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":[],"comment":null}`, string(body))
}

func TestReportEnhancement_InvalidCategory(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/image/abc/report", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})
	client, _ := newTestClient(t, mux)

	result, err := client.ReportEnhancement(context.Background(), "abc",
		[]autoenhance.ReportCategory{autoenhance.ReportHDR, "blurry"}, "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, autoenhance.ErrInvalidCategory)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	var catErr *autoenhance.CategoryError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, autoenhance.ReportCategory("blurry"), catErr.Value)
	assert.Contains(t, err.Error(), `"blurry" is not in the categories list`)
	assert.Len(t, catErr.Valid, 11)
}

func TestReportEnhancement_FailureKept(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/image/abc/report", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"already reported"}`))
	})
	client, _ := newTestClient(t, mux)

	result, err := client.ReportEnhancement(context.Background(), "abc", []autoenhance.ReportCategory{autoenhance.ReportOther}, "")
	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
	require.NotNil(t, result.Failure)
	assert.Equal(t, "already reported", result.Failure.Message)
}

func TestReportEnhancement_PostNotRetried(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/image/abc/report", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client, _ := newTestClient(t, mux)

	result, err := client.ReportEnhancement(context.Background(), "abc", []autoenhance.ReportCategory{autoenhance.ReportOther}, "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestReportCategories(t *testing.T) {
	cats := autoenhance.ReportCategories()
	require.Len(t, cats, 11)
	assert.Equal(t, autoenhance.ReportDownload, cats[0])
	assert.Equal(t, autoenhance.ReportOther, cats[10])

	cats[0] = "mutated"
	assert.Equal(t, autoenhance.ReportDownload, autoenhance.ReportCategories()[0])
}
