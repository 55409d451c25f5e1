package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbacklab/insight-synthesizer/internal/application"
	appinsights "github.com/feedbacklab/insight-synthesizer/internal/application/insights"
	domai "github.com/feedbacklab/insight-synthesizer/internal/domain/ai"
	"github.com/feedbacklab/insight-synthesizer/internal/middleware"
)

type fakeClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeClient) Complete(ctx context.Context, messages []domai.Message) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

const feedbackCSV = "text\nCheckout is slow\nLove the new UI\nCheckout is slow on mobile\n"

const mockThemeResponse = `{"themes":[{"theme":"Checkout performance","summary":"Users report slow checkout.","frequency":"High","severity":"Medium","recommended_action":"Optimize checkout path.","cited_row_ids":[0,2]}]}`

func newTestHandler(client domai.Client) http.Handler {
	svc := &appinsights.Service{Client: client, Clock: application.SystemClock{}}
	health := map[string]middleware.HealthChecker{
		"credential": &middleware.CredentialHealthChecker{APIKey: "sk-test"},
	}
	return NewRouter(svc, 20, health)
}

func multipartBody(t *testing.T, csvData string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if csvData != "" {
		fw, err := mw.CreateFormFile("file", "feedback.csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(csvData))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func postMultipart(t *testing.T, h http.Handler, target, csvData string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, csvData, fields)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPreview(t *testing.T) {
	h := newTestHandler(&fakeClient{})

	rec := postMultipart(t, h, "/v1/preview", feedbackCSV, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Headers   []string   `json:"headers"`
		Rows      [][]string `json:"rows"`
		TotalRows int        `json:"total_rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"text"}, resp.Headers)
	assert.Len(t, resp.Rows, 3)
	assert.Equal(t, 3, resp.TotalRows)
}

func TestPreview_MissingFile(t *testing.T) {
	h := newTestHandler(&fakeClient{})
	rec := postMultipart(t, h, "/v1/preview", "", map[string]string{"column": "text"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_JSON(t *testing.T) {
	h := newTestHandler(&fakeClient{responses: []string{mockThemeResponse}})

	rec := postMultipart(t, h, "/v1/analyze", feedbackCSV, map[string]string{
		"column":   "text",
		"max_rows": "5",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ID          string `json:"id"`
		GeneratedAt string `json:"generated_at"`
		Repaired    bool   `json:"repaired"`
		Themes      []struct {
			Theme     string `json:"theme"`
			Frequency string `json:"frequency"`
			Citations []struct {
				RowID int    `json:"row_id"`
				Text  string `json:"text"`
			} `json:"citations"`
		} `json:"themes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.False(t, resp.Repaired)

	_, err := time.Parse(time.RFC3339, resp.GeneratedAt)
	assert.NoError(t, err)

	require.Len(t, resp.Themes, 1)
	card := resp.Themes[0]
	assert.Equal(t, "Checkout performance", card.Theme)
	assert.Equal(t, "High", card.Frequency)
	require.Len(t, card.Citations, 2)
	assert.Equal(t, 0, card.Citations[0].RowID)
	assert.Equal(t, "Checkout is slow", card.Citations[0].Text)
	assert.Equal(t, 2, card.Citations[1].RowID)
	assert.Equal(t, "Checkout is slow on mobile", card.Citations[1].Text)
}

func TestAnalyze_MarkdownDownload(t *testing.T) {
	h := newTestHandler(&fakeClient{responses: []string{mockThemeResponse}})

	rec := postMultipart(t, h, "/v1/analyze?format=markdown", feedbackCSV, map[string]string{
		"column":   "text",
		"max_rows": "5",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Contains(t, rec.Header().Get("Content-Disposition"), "insights_report.md")
	body := rec.Body.String()
	assert.Contains(t, body, "# AI Insight Synthesizer Output")
	assert.Contains(t, body, "## Checkout performance")
	assert.Contains(t, body, "Cited rows: 0, 2")
}

func TestAnalyze_UnknownColumn(t *testing.T) {
	h := newTestHandler(&fakeClient{responses: []string{mockThemeResponse}})

	rec := postMultipart(t, h, "/v1/analyze", feedbackCSV, map[string]string{
		"column": "rating",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_MissingColumnField(t *testing.T) {
	h := newTestHandler(&fakeClient{responses: []string{mockThemeResponse}})
	rec := postMultipart(t, h, "/v1/analyze", feedbackCSV, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze_QuotaExceeded(t *testing.T) {
	h := newTestHandler(&fakeClient{errs: []error{domai.ErrQuotaExceeded}})

	rec := postMultipart(t, h, "/v1/analyze", feedbackCSV, map[string]string{
		"column": "text",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAnalyze_UnrepairableOutput(t *testing.T) {
	client := &fakeClient{responses: []string{"not json", "still not json"}}
	h := newTestHandler(client)

	rec := postMultipart(t, h, "/v1/analyze", feedbackCSV, map[string]string{
		"column": "text",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 2, client.calls)
}

func TestAnalyze_BadCitations(t *testing.T) {
	raw := `{"themes":[{"theme":"t","summary":"s","frequency":"Low","severity":"Low","recommended_action":"a","cited_row_ids":[42]}]}`
	h := newTestHandler(&fakeClient{responses: []string{raw}})

	rec := postMultipart(t, h, "/v1/analyze", feedbackCSV, map[string]string{
		"column": "text",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "42")
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestHealth_MissingCredential(t *testing.T) {
	svc := &appinsights.Service{Client: &fakeClient{}, Clock: application.SystemClock{}}
	h := NewRouter(svc, 20, map[string]middleware.HealthChecker{
		"credential": &middleware.CredentialHealthChecker{},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestHandler(&fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Contains(t, m, "requests_total")
	assert.Contains(t, m, "analyses_total")
}

func TestIndexPage(t *testing.T) {
	h := newTestHandler(&fakeClient{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AI Customer Insight Synthesizer")
}
