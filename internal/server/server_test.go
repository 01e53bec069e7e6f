package server

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uirunner/internal/browser"
	"uirunner/internal/config"
	"uirunner/internal/domain"
	"uirunner/internal/logging"
	"uirunner/internal/metrics"
	"uirunner/internal/storage"
	"uirunner/internal/suite"
)

const sitePage = `<html><body>
<form><input type="text" name="q"><button type="submit" name="search">Go</button></form>
<h1>Welcome</h1>
</body></html>`

func newTestServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	cfg := config.New()
	cfg.Driver = browser.DriverStatic
	cfg.OutputDir = t.TempDir()

	reg := prometheus.NewRegistry()
	s := suite.New(cfg, logging.Discard(), suite.WithMetrics(metrics.New(reg)))
	srv, err := New(cfg, s, reg, logging.Discard())
	require.NoError(t, err)
	return srv, cfg
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sitePage)
	}))
	t.Cleanup(site.Close)
	return site
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func uploadRequest(t *testing.T, target string, workbook []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("url", target))
	if workbook != nil {
		part, err := mw.CreateFormFile("file", "cases.xlsx")
		require.NoError(t, err)
		_, err = part.Write(workbook)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func workbookBytes(t *testing.T, cases []domain.TestCase) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.xlsx")
	require.NoError(t, storage.NewWorkbookStore("").WriteCases(path, cases))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestServer_Index(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `action="/generate"`)
	assert.Contains(t, rr.Body.String(), `action="/upload"`)
}

func TestServer_GenerateAndDownload(t *testing.T) {
	srv, cfg := newTestServer(t)

	form := url.Values{"url": {"https://example.com"}, "num_tests": {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rr := serve(srv, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Generated 3 test case(s)")
	assert.Contains(t, rr.Body.String(), "/download/"+cfg.CasesFile)

	cases, err := storage.NewWorkbookStore("").ReadCases(filepath.Join(cfg.OutputDir, cfg.CasesFile))
	require.NoError(t, err)
	assert.Len(t, cases, 3)

	rr = serve(srv, httptest.NewRequest(http.MethodGet, "/download/"+cfg.CasesFile, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), cfg.CasesFile)
	assert.NotZero(t, rr.Body.Len())
}

func TestServer_GenerateValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	for name, form := range map[string]url.Values{
		"missing url":   {"num_tests": {"3"}},
		"invalid count": {"url": {"https://example.com"}, "num_tests": {"three"}},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rr := serve(srv, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), `class="error"`)
		})
	}
}

func TestServer_DownloadOnlyServesOutputDir(t *testing.T) {
	srv, cfg := newTestServer(t)
	secret := filepath.Join(filepath.Dir(cfg.OutputDir), "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0644))

	for _, path := range []string{"/download/missing.xlsx", "/download/..%2Fsecret.txt", "/download/.."} {
		rr := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEqual(t, http.StatusOK, rr.Code, path)
		assert.NotContains(t, rr.Body.String(), "secret", path)
	}
}

func TestServer_UploadRunsCases(t *testing.T) {
	srv, cfg := newTestServer(t)
	site := newSite(t)

	workbook := workbookBytes(t, []domain.TestCase{
		{ID: "TC1", Selector: "h1", Action: "verify_text", ExpectedResult: "Welcome"},
		{ID: "TC2", Selector: "#missing", Action: "click"},
	})

	rr := serve(srv, uploadRequest(t, site.URL, workbook))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := rr.Body.String()
	assert.Contains(t, body, "1 passed, 1 failed of 2")
	assert.Contains(t, body, `<tr class="Pass">`)
	assert.Contains(t, body, `<tr class="Fail">`)
	assert.Contains(t, body, "/download/"+cfg.ResultsFile)

	_, err := os.Stat(filepath.Join(cfg.OutputDir, cfg.ResultsFile))
	assert.NoError(t, err)
	_, err = os.Stat(cfg.GetUploadPath())
	assert.NoError(t, err)

	rr = serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	metricsBody, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(metricsBody), `uirunner_runs_total{outcome="failed"} 1`)
	assert.Contains(t, string(metricsBody), `uirunner_cases_total{status="Pass"} 1`)
}

func TestServer_UploadFatalRun(t *testing.T) {
	srv, cfg := newTestServer(t)
	site := httptest.NewServer(http.NotFoundHandler())
	target := site.URL
	site.Close()

	workbook := workbookBytes(t, []domain.TestCase{{ID: "TC1", Selector: "body", Action: "verify_visibility", ExpectedResult: "Visible"}})
	rr := serve(srv, uploadRequest(t, target, workbook))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "run aborted")
	_, err := os.Stat(filepath.Join(cfg.OutputDir, cfg.ResultsFile))
	assert.True(t, os.IsNotExist(err))
}

func TestServer_UploadValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	site := newSite(t)

	t.Run("missing file", func(t *testing.T) {
		rr := serve(srv, uploadRequest(t, site.URL, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("not a workbook", func(t *testing.T) {
		rr := serve(srv, uploadRequest(t, site.URL, []byte("hello")))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing url", func(t *testing.T) {
		rr := serve(srv, uploadRequest(t, "", workbookBytes(t, nil)))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestServer_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok\n", rr.Body.String())
}
