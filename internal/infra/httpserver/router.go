package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appinsights "github.com/feedbacklab/insight-synthesizer/internal/application/insights"
	domai "github.com/feedbacklab/insight-synthesizer/internal/domain/ai"
	"github.com/feedbacklab/insight-synthesizer/internal/domain/insights"
	"github.com/feedbacklab/insight-synthesizer/internal/infra/tabular"
	"github.com/feedbacklab/insight-synthesizer/internal/middleware"
)

type Router struct {
	svc         *appinsights.Service
	previewRows int
}

func NewRouter(svc *appinsights.Service, previewRows int, health map[string]middleware.HealthChecker) http.Handler {
	if previewRows <= 0 {
		previewRows = 20
	}
	r := &Router{svc: svc, previewRows: previewRows}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)

	mux.Get("/", r.handleIndex)
	mux.Get("/health", middleware.HealthHandler(health))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/preview", r.wrap(r.handlePreview))
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks caller mistakes so wrap maps them to 400.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return &badRequestError{err: err} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var badReq *badRequestError
			if errors.As(err, &badReq) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			// The model produced output the service could not accept.
			var parseErr *insights.ParseError
			var valErr *insights.ValidationError
			var citeErr *insights.CitationError
			if errors.As(err, &parseErr) || errors.As(err, &valErr) || errors.As(err, &citeErr) {
				http.Error(w, err.Error(), http.StatusBadGateway)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// readTable pulls the uploaded CSV out of the multipart form.
func (r *Router) readTable(req *http.Request) (*tabular.Table, error) {
	if err := req.ParseMultipartForm(middleware.MaxUploadBytes); err != nil {
		return nil, badRequest(fmt.Errorf("failed to read upload: %w", err))
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return nil, badRequest(fmt.Errorf("a csv file upload is required: %w", err))
	}
	defer file.Close()

	if err := middleware.ValidateUploadType(header.Header.Get("Content-Type")); err != nil {
		return nil, badRequest(err)
	}

	tbl, err := tabular.Read(file)
	if err != nil {
		return nil, badRequest(err)
	}
	return tbl, nil
}

// POST /v1/preview
// Multipart form: file. Returns headers plus the first rows so the page can
// populate the column selector.
func (r *Router) handlePreview(w http.ResponseWriter, req *http.Request) error {
	tbl, err := r.readTable(req)
	if err != nil {
		return err
	}

	resp := map[string]any{
		"headers":    tbl.Headers,
		"rows":       tbl.Preview(r.previewRows),
		"total_rows": tbl.RowCount(),
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// themeCard is a theme with its citations resolved against the analyzed rows.
type themeCard struct {
	insights.Theme
	Citations []insights.Citation `json:"citations"`
}

type analyzeResponse struct {
	ID          insights.AnalysisID `json:"id"`
	GeneratedAt string              `json:"generated_at"`
	Repaired    bool                `json:"repaired"`
	Themes      []themeCard         `json:"themes"`
}

// POST /v1/analyze
// Multipart form: file, column, max_rows. Returns theme cards as JSON, or the
// markdown report as a download with ?format=markdown.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tbl, err := r.readTable(req)
	if err != nil {
		return err
	}

	column := middleware.SanitizeString(req.FormValue("column"))
	if err := middleware.ValidateColumnName(column); err != nil {
		return badRequest(err)
	}
	maxRows, _ := strconv.Atoi(req.FormValue("max_rows"))
	maxRows = middleware.ClampRows(maxRows)

	if _, err := tbl.ColumnIndex(column); err != nil {
		return badRequest(err)
	}

	middleware.IncrementAnalyses()
	result, rows, err := r.svc.Analyze(req.Context(), appinsights.AnalyzeCommand{
		Source:  tbl,
		Column:  column,
		MaxRows: maxRows,
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	if result.Repaired {
		middleware.IncrementRepairs()
	}

	if req.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", insights.ReportFileName))
		_, err := w.Write([]byte(result.Markdown()))
		return err
	}

	resp := analyzeResponse{
		ID:          result.ID,
		GeneratedAt: result.GeneratedAt.UTC().Format(time.RFC3339),
		Repaired:    result.Repaired,
		Themes:      make([]themeCard, 0, len(result.Themes)),
	}
	for i := range result.Themes {
		t := result.Themes[i]
		cited, err := t.Citations(rows)
		if err != nil {
			return err
		}
		resp.Themes = append(resp.Themes, themeCard{Theme: t, Citations: cited})
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
