package settings

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahimtalukderraj-lang/salesapp/internal/config"
	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"

	_ "modernc.org/sqlite"
)

func newTestHandler(t *testing.T) (*Handler, *entries.Repository, *events.Bus) {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, entries.InitSchema(db))

	cfg := &config.Config{
		DefaultCategories: []config.CategoryDefault{
			{Name: "CIGARETTE", ProfitPct: 0.10},
			{Name: "BEER", ProfitPct: 0.20},
		},
		DefaultGasGrades: []string{"REGULAR", "PREMIUM"},
	}

	repo := entries.NewRepository(db, zerolog.Nop())
	bus := events.NewBus(zerolog.Nop())
	return NewHandler(cfg, repo, bus, zerolog.Nop()), repo, bus
}

func TestHandleGetDefaults(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/settings/defaults", nil)
	w := httptest.NewRecorder()
	handler.HandleGetDefaults(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var defaults Defaults
	require.NoError(t, json.NewDecoder(w.Body).Decode(&defaults))

	require.Len(t, defaults.Categories, 2)
	assert.Equal(t, "CIGARETTE", defaults.Categories[0].Name)
	assert.InDelta(t, 0.20, defaults.Categories[1].ProfitPct, 1e-9)
	assert.Equal(t, []string{"REGULAR", "PREMIUM"}, defaults.GasGrades)
	assert.Equal(t, PaymentMethods, defaults.PaymentMethods)
}

func TestHandleResetStore(t *testing.T) {
	handler, repo, bus := newTestHandler(t)

	var resets []*events.Event
	bus.Subscribe(events.StoreReset, func(e *events.Event) {
		resets = append(resets, e)
	})

	entry := &entries.DailyEntry{EntryDate: "2024-01-15"}
	_, err := repo.Create(entry, entries.Compute(entry))
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/settings/reset", nil)
	w := httptest.NewRecorder()
	handler.HandleResetStore(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "reset", response["status"])
	assert.Equal(t, float64(1), response["rows_deleted"])

	count, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.Len(t, resets, 1)
	assert.Equal(t, int64(1), resets[0].Data["rows_deleted"])
}

func TestHandleResetStoreEmpty(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/settings/reset", nil)
	w := httptest.NewRecorder()
	handler.HandleResetStore(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, float64(0), response["rows_deleted"])
}
