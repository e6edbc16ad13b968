// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lvillar/pbitdoc"
	"github.com/lvillar/pbitdoc/internal/config"
	"github.com/lvillar/pbitdoc/internal/middleware"
	"github.com/lvillar/pbitdoc/internal/ui"
)

// ServiceName is reported by the health and test endpoints.
const ServiceName = "Power BI Documentador API"

// MaxUploadBytes bounds the size of an uploaded template.
const MaxUploadBytes = 64 << 20

const (
	healthPath  = "/api/health"
	testPath    = "/api/test"
	processPath = "/api/process-file"
	inspectPath = "/api/inspect"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	opts   []pbitdoc.Option
	now    func() time.Time
}

// New creates a Server. Pipeline options are derived from cfg.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
		opts:   cfg.ProcessOptions(logger),
		now:    time.Now,
	}
}

// Handler builds the router. ctx bounds the rate limiter's background cleanup.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)

	r.Get("/", ui.Handler(processPath))
	r.Get(healthPath, s.handleHealth)
	r.Get(testPath, s.handleTest)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
			RequestsPerSecond: s.cfg.RateLimitRPS,
			Burst:             s.cfg.RateLimitBurst,
		}))
		r.Post(processPath, s.handleProcessFile)
		r.Post(inspectPath, s.handleInspect)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   ServiceName,
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleTest(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "API is working!",
		"service": ServiceName,
		"endpoints": map[string]string{
			"health":       healthPath,
			"process_file": processPath + " (POST)",
			"inspect":      inspectPath + " (POST)",
			"test":         testPath,
		},
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) handleProcessFile(w http.ResponseWriter, r *http.Request) {
	name, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	opts := append(s.opts[:len(s.opts):len(s.opts)],
		pbitdoc.WithLogger(s.logger.With(slog.String("requestId", middleware.RequestIDFromContext(ctx)))))
	res, err := pbitdoc.Process(ctx, data, name, opts...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Processing failed: "+pbitdoc.Message(err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.PDF)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	_, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	m, err := pbitdoc.Inspect(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Processing failed: "+pbitdoc.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": m.Stats(),
		"model": m,
	})
}

// readUpload validates the multipart "file" field and returns its name and
// contents. On failure the error response has been written and ok is false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (name string, data []byte, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			writeError(w, http.StatusBadRequest, "No file provided")
		default:
			writeError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		}
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	// A part sent without a filename is stored as a plain value.
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		if _, present := r.MultipartForm.Value["file"]; present {
			writeError(w, http.StatusBadRequest, "No file selected")
		} else {
			writeError(w, http.StatusBadRequest, "No file provided")
		}
		return "", nil, false
	}

	fh := files[0]
	if fh.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return "", nil, false
	}
	if !AllowedFile(fh.Filename) {
		writeError(w, http.StatusBadRequest, "Only .pbit files are allowed")
		return "", nil, false
	}

	data, err := readFileHeader(fh)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "reading upload failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return "", nil, false
	}
	return fh.Filename, data, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// AllowedFile reports whether name has a "pbit" extension. The extension is
// the text after the last dot, compared case-insensitively.
func AllowedFile(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	return strings.ToLower(name[i+1:]) == "pbit"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
