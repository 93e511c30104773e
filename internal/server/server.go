// =============================================================================
// Text Info Extractor - HTTP API
// =============================================================================
//
// This module exposes extraction and the per-session accumulation store
// over HTTP.
//
// ROUTES:
//   GET    /healthz              : liveness
//   POST   /api/extract          : extract without storing
//   POST   /api/records          : extract and append
//   GET    /api/records          : list with indices
//   DELETE /api/records          : clear
//   DELETE /api/records/{index}  : delete one record
//   GET    /api/records/export   : download the records as XLSX
//
// Bodies above MaxBodyBytes get 413, as does a value too long for one
// spreadsheet cell. Blank text gets 400.
//
// =============================================================================

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ginjaninja78/text-info-extractor/internal/extractor"
	"github.com/ginjaninja78/text-info-extractor/internal/store"
	"github.com/ginjaninja78/text-info-extractor/internal/types"
	"github.com/ginjaninja78/text-info-extractor/internal/xlsxwriter"
)

// =============================================================================
// SERVER
// =============================================================================

// SessionCookie carries the session ID.
const SessionCookie = "extractor_session"

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options configures a Server.
type Options struct {
	MaxBodyBytes int64
	DownloadName string
	Export       xlsxwriter.ExportOptions
}

// Server handles the HTTP API.
type Server struct {
	extractor *extractor.Extractor
	sessions  *store.Sessions
	options   Options
	logger    *slog.Logger
}

// New creates a Server.
func New(ex *extractor.Extractor, sessions *store.Sessions, options Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if options.MaxBodyBytes <= 0 {
		options.MaxBodyBytes = 64 << 10
	}
	if options.DownloadName == "" {
		options.DownloadName = "信息提取累积结果.xlsx"
	}
	return &Server{extractor: ex, sessions: sessions, options: options, logger: logger}
}

// Routes returns the router for the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/extract", s.handleExtract)
		api.Route("/records", func(rec chi.Router) {
			rec.Use(s.withSession)
			rec.Post("/", s.handleAppend)
			rec.Get("/", s.handleList)
			rec.Delete("/", s.handleClear)
			rec.Get("/export", s.handleExport)
			rec.Delete("/{index}", s.handleDelete)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// PAYLOADS
// =============================================================================

type extractRequest struct {
	Text string `json:"text"`
}

type recordResponse struct {
	Index  int          `json:"index"`
	Record types.Record `json:"record"`
}

type listResponse struct {
	Count   int              `json:"count"`
	Records []recordResponse `json:"records"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, s.extractor.Extract(text))
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	text, ok := s.decodeText(w, r)
	if !ok {
		return
	}
	record := s.extractor.Extract(text)
	if err := xlsxwriter.CheckRecord(record); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	index := sessionStore(r.Context()).Append(record)
	respondWithJSON(w, http.StatusCreated, recordResponse{Index: index, Record: record})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records := sessionStore(r.Context()).Records()
	resp := listResponse{Count: len(records), Records: make([]recordResponse, len(records))}
	for i, rec := range records {
		resp.Records[i] = recordResponse{Index: i, Record: rec}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	removed, err := sessionStore(r.Context()).Delete(index)
	if errors.Is(err, store.ErrIndexOutOfRange) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, recordResponse{Index: index, Record: removed})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sessionStore(r.Context()).Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := xlsxwriter.Export(sessionStore(r.Context()).Records(), s.options.Export)
	if err != nil {
		s.logger.Error("export failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(s.options.DownloadName)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write export response", "error", err)
	}
}

// decodeText reads the request text and rejects blank input.
func (s *Server) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.options.MaxBodyBytes)
	defer r.Body.Close()

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return "", false
		}
		respondWithError(w, http.StatusBadRequest, "invalid request payload: "+err.Error())
		return "", false
	}
	if err := extractor.CheckInput(req.Text); err != nil {
		respondWithError(w, http.StatusBadRequest, "请输入需要提取的文本内容")
		return "", false
	}
	return req.Text, true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Default().Error("failed to write JSON response", "error", err)
		}
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
