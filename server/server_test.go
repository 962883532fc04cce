package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/bytecv/export"
	"github.com/ByLCY/bytecv/layout"
	"github.com/ByLCY/bytecv/logging"
	"github.com/ByLCY/bytecv/metrics"
	"github.com/ByLCY/bytecv/pipeline"
	canvasrenderer "github.com/ByLCY/bytecv/renderer/canvas"
	"github.com/ByLCY/bytecv/resume"
	"github.com/ByLCY/bytecv/session"
	"github.com/ByLCY/bytecv/store"
)

func init() { gin.SetMode(gin.TestMode) }

type fixture struct {
	srv   *Server
	store *store.MemoryStore
}

func newFixture(t *testing.T, rps float64, burst int) fixture {
	t.Helper()
	th, err := layout.DefaultTheme()
	require.NoError(t, err)
	log := logging.Discard()
	st := store.NewMemoryStore()
	ctrl := session.New(context.Background(), pipeline.New(canvasrenderer.NewRenderer(""), th, layout.A4), session.Options{
		Store:  st,
		Logger: logging.Component(log, "session"),
	})
	exp := export.New(canvasrenderer.NewRenderer(""), th, layout.A4, export.Options{Logger: logging.Component(log, "export")})
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	srv := New(ctrl, exp, Options{
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		Gatherer:       reg,
		Logger:         logging.Component(log, "http"),
	})
	return fixture{srv: srv, store: st}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, 100, 100)
	w := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "bytecv_recompute_duration_seconds")
}

func TestOpsFlow(t *testing.T) {
	f := newFixture(t, 100, 100)

	w := f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"add","collection":"education"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res mutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.ID)
	require.Equal(t, uint64(2), res.Version)

	body := `{"op":"update","collection":"education","id":"` + res.ID + `","field":"institution","value":"Cambridge"}`
	w = f.do(t, http.MethodPost, "/api/resume/ops", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"add","collection":"hobbies"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"explode"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPost, "/api/resume/ops", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/resume", "")
	require.Equal(t, http.StatusOK, w.Code)
	rec, err := resume.Decode(w.Body.Bytes())
	require.NoError(t, err)
	edu := rec.Document.Education.Values()
	require.Len(t, edu, 1)
	require.Equal(t, "Cambridge", edu[0].Institution)

	w = f.do(t, http.MethodGet, "/api/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	var pv previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pv))
	require.Equal(t, []string{"header", "education"}, pv.Keys)
	require.Empty(t, pv.Warning)
	require.NotEmpty(t, pv.Page.Texts)
}

func TestImportRepairsLegacyRecord(t *testing.T) {
	f := newFixture(t, 100, 100)
	w := f.do(t, http.MethodPut, "/api/resume", `{"personalInfo":{"name":"Legacy"},"projects":[{"id":"p1","title":"Old"}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/resume", "")
	rec, err := resume.Decode(w.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, "Legacy", rec.Document.PersonalInfo.Name)
	require.Equal(t, resume.DefaultSectionOrder(), rec.Document.SectionOrder)

	w = f.do(t, http.MethodPut, "/api/resume", `{{`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewWarnsWhenTruncated(t *testing.T) {
	f := newFixture(t, 100, 100)
	long := strings.Repeat(`Led a team that shipped features\n`, 120)
	w := f.do(t, http.MethodPut, "/api/resume", `{"experience":[{"id":"x1","company":"Acme","description":"`+long+`"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res mutationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Truncated)

	w = f.do(t, http.MethodGet, "/api/preview", "")
	var pv previewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pv))
	require.True(t, pv.Truncated)
	require.Equal(t, TruncationWarning, pv.Warning)
	require.Equal(t, []string{"header"}, pv.Keys)

	w = f.do(t, http.MethodGet, "/api/preview/debug", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"truncated": true`)
}

func TestExportEndpoints(t *testing.T) {
	f := newFixture(t, 100, 100)
	f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"setPersonal","field":"name","value":"Ada Lovelace"}`)

	w := f.do(t, http.MethodGet, "/api/export.pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "Ada_Lovelace_Resume.pdf")
	require.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = f.do(t, http.MethodPost, "/api/export", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportFileNameNonASCII(t *testing.T) {
	f := newFixture(t, 100, 100)
	f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"setPersonal","field":"name","value":"José Núñez"}`)

	w := f.do(t, http.MethodGet, "/api/export.pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	cd := w.Header().Get("Content-Disposition")
	require.NotContains(t, cd, `\u`)
	_, params, err := mime.ParseMediaType(cd)
	require.NoError(t, err)
	require.Equal(t, "José_Núñez_Resume.pdf", params["filename"])
}

func TestSaveAndReset(t *testing.T) {
	f := newFixture(t, 100, 100)
	f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"addCustomSection"}`)

	w := f.do(t, http.MethodPost, "/api/save", "")
	require.Equal(t, http.StatusOK, w.Code)
	rec, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, rec.Document.CustomSections.Len())

	w = f.do(t, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	_, err = f.store.Load(context.Background())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestMutationsAreRateLimited(t *testing.T) {
	f := newFixture(t, 0.5, 1)
	w := f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"add","collection":"projects"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = f.do(t, http.MethodPost, "/api/resume/ops", `{"op":"add","collection":"projects"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))

	// 读取接口不限流
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/resume", "").Code)
	}
}
