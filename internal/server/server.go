// Package server is the web front-end: generate a case workbook, upload one
// to run it and download the resulting workbooks.
package server

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"uirunner/internal/browser"
	"uirunner/internal/config"
	"uirunner/internal/domain"
	"uirunner/internal/suite"
)

const (
	maxUploadBytes    = 32 << 20
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the web front-end
type Server struct {
	cfg       *config.Config
	suite     *suite.Suite
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	templates *template.Template
	router    chi.Router

	// guards the upload file
	uploadMu sync.Mutex
}

// New creates a Server. Metrics are served from gatherer.
func New(cfg *config.Config, s *suite.Suite, gatherer prometheus.Gatherer, logger *slog.Logger) (*Server, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	srv := &Server{
		cfg:       cfg,
		suite:     s,
		gatherer:  gatherer,
		logger:    logger,
		templates: templates,
	}
	srv.router = srv.routes()
	return srv, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Post("/generate", s.handleGenerate)
	r.Post("/upload", s.handleUpload)
	r.Get("/download/{filename}", s.handleDownload)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the HTTP handler of the front-end
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured address until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

type indexData struct {
	URL      string
	Count    int
	Message  string
	Download string
	Error    string
}

type resultsData struct {
	Output   *domain.RunOutput
	Columns  []string
	Download string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", indexData{Count: config.DefaultCount})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, http.StatusBadRequest, indexData{Count: config.DefaultCount}, err)
		return
	}

	target := strings.TrimSpace(r.FormValue("url"))
	data := indexData{URL: target, Count: config.DefaultCount}
	if target == "" {
		s.renderError(w, http.StatusBadRequest, data, errors.New("url is required"))
		return
	}

	count, err := strconv.Atoi(strings.TrimSpace(r.FormValue("num_tests")))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, data, errors.New("num_tests must be a number"))
		return
	}
	data.Count = count

	path := filepath.Join(s.cfg.OutputDir, s.cfg.CasesFile)
	cases, err := s.suite.Generate(target, count, path)
	if err != nil {
		s.logger.Error("generate failed", "error", err)
		s.renderError(w, http.StatusInternalServerError, data, err)
		return
	}

	data.Message = fmt.Sprintf("Generated %d test case(s) for %s.", len(cases), target)
	data.Download = downloadLink(path)
	s.render(w, http.StatusOK, "index.html", data)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.renderError(w, http.StatusBadRequest, indexData{Count: config.DefaultCount}, fmt.Errorf("invalid upload: %w", err))
		return
	}

	target := strings.TrimSpace(r.FormValue("url"))
	data := indexData{URL: target, Count: config.DefaultCount}
	if target == "" {
		s.renderError(w, http.StatusBadRequest, data, errors.New("url is required"))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.renderError(w, http.StatusBadRequest, data, errors.New("file is required"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, data, fmt.Errorf("read upload: %w", err))
		return
	}

	cases, err := s.suite.Workbooks().ReadCasesFrom(bytes.NewReader(content))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, data, err)
		return
	}
	if err := s.saveUpload(content); err != nil {
		s.logger.Warn("saving upload", "error", err)
	}

	resultsPath := filepath.Join(s.cfg.OutputDir, s.cfg.ResultsFile)
	output, err := s.suite.Run(r.Context(), suite.RunRequest{
		URL:         target,
		Cases:       cases,
		ResultsPath: resultsPath,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if browser.IsFatal(err) {
			status = http.StatusBadGateway
		}
		s.logger.Error("run failed", "url", target, "error", err)
		s.renderError(w, status, data, fmt.Errorf("run aborted: %w", err))
		return
	}

	s.render(w, http.StatusOK, "results.html", resultsData{
		Output:   output,
		Columns:  domain.ResultColumns,
		Download: downloadLink(resultsPath),
	})
}

func (s *Server) saveUpload(content []byte) error {
	s.uploadMu.Lock()
	defer s.uploadMu.Unlock()

	path := s.cfg.GetUploadPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

// handleDownload serves a file from the output dir. Only the base name of
// the requested file is used.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(s.cfg.OutputDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) renderError(w http.ResponseWriter, status int, data indexData, err error) {
	data.Error = err.Error()
	s.render(w, status, "index.html", data)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func downloadLink(path string) string {
	return "/download/" + url.PathEscape(filepath.Base(path))
}
