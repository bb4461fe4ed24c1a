package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimtalukderraj-lang/salesapp/internal/config"
	"github.com/fahimtalukderraj-lang/salesapp/internal/database"
	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dataDir := t.TempDir()
	db, err := database.New(database.Config{Path: filepath.Join(dataDir, "daily_sales.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, entries.InitSchema(db.Conn()))

	repo := entries.NewRepository(db.Conn(), zerolog.Nop())

	cfg := &config.Config{
		Port:    8080,
		DataDir: dataDir,
		DBFile:  "daily_sales.db",
		DefaultCategories: []config.CategoryDefault{
			{Name: "GROCERY", ProfitPct: 0.10},
			{Name: "DELI", ProfitPct: 0.25},
		},
		DefaultGasGrades: []string{"REGULAR", "PREMIUM"},
	}

	return New(Config{
		Port:        cfg.Port,
		Log:         zerolog.Nop(),
		DB:          db,
		Config:      cfg,
		Bus:         events.NewBus(zerolog.Nop()),
		EntriesRepo: repo,
		DevMode:     true,
	})
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServerEntryFlow(t *testing.T) {
	s := newTestServer(t)

	// Save an entry
	body := `{
		"entry_date": "2024-03-05",
		"categories": [{"name": "GROCERY", "total_sales": "1000", "profit_pct": 0.10}],
		"gas_grades": [{"grade": "REGULAR", "cost_per_gal": 3.00, "sales_per_gal": 3.50, "sale_gal": 100}],
		"payments": {"cash": 200, "credit": 800}
	}`
	rec := doRequest(s, http.MethodPost, "/api/entries", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var record entries.StoredRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, int64(1), record.ID)
	assert.InDelta(t, 150.0, record.Payload.Results.NetProfit, 1e-9)

	// List it back
	rec = doRequest(s, http.MethodGet, "/api/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []entries.StoredRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)

	// Fetch by id
	rec = doRequest(s, http.MethodGet, "/api/entries/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/entries/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Range report covering the entry
	rec = doRequest(s, http.MethodGet, "/api/reports?start_date=2024-03-01&end_date=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, float64(1), report["count"])

	// CSV export
	rec = doRequest(s, http.MethodGet, "/api/export/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "2024-03-05")

	// Reset wipes the store
	rec = doRequest(s, http.MethodPost, "/api/settings/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var reset map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reset))
	assert.Equal(t, "reset", reset["status"])
	assert.Equal(t, float64(1), reset["rows_deleted"])

	rec = doRequest(s, http.MethodGet, "/api/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServerSettingsDefaults(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/api/settings/defaults", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var defaults map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &defaults))

	categories, ok := defaults["categories"].([]interface{})
	require.True(t, ok)
	assert.Len(t, categories, 2)

	grades, ok := defaults["gas_grades"].([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"REGULAR", "PREMIUM"}, grades)
}

func TestServerRouteStatuses(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"system database", http.MethodGet, "/api/system/database", http.StatusOK},
		{"system disk", http.MethodGet, "/api/system/disk", http.StatusOK},
		{"backups unavailable without service", http.MethodGet, "/api/backups", http.StatusServiceUnavailable},
		{"backup trigger unavailable without service", http.MethodPost, "/api/jobs/backup", http.StatusServiceUnavailable},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/entries", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, tt.method, tt.path, "")
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestServerInvertedReportRangeIsEmpty(t *testing.T) {
	s := newTestServer(t)

	body := `{"entry_date": "2024-03-05", "categories": [{"name": "GROCERY", "total_sales": 500, "profit_pct": 0.10}]}`
	rec := doRequest(s, http.MethodPost, "/api/entries", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(s, http.MethodGet, "/api/reports?start_date=2024-03-31&end_date=2024-03-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, float64(0), report["count"])
}
