package reports

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
	"github.com/fahimtalukderraj-lang/salesapp/internal/utils"
)

// Handler handles report HTTP requests
type Handler struct {
	repo *entries.Repository
	log  zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(repo *entries.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "reports").Logger(),
	}
}

// RegisterRoutes registers all report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.HandleGetReport)
		r.Get("/insights", h.HandleGetInsights)
	})
}

// HandleGetReport handles GET / - range totals plus monthly/annual rollups.
// An inverted range is answered with an empty report, not an error.
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRangeParams(w, r)
	if !ok {
		return
	}

	timer := utils.NewTimer("build_report", h.log)
	defer timer.Stop()

	records, err := h.repo.GetAll(nil)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load records for report")
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	report := BuildReport(records, start, end)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleGetInsights handles GET /insights - net profit statistics over a range
func (h *Handler) HandleGetInsights(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.dateRangeParams(w, r)
	if !ok {
		return
	}

	window := DefaultMovingAvgWindow
	if windowStr := r.URL.Query().Get("window"); windowStr != "" {
		n, err := strconv.Atoi(windowStr)
		if err != nil || n < 1 || n > 365 {
			http.Error(w, "Invalid window. Must be 1-365", http.StatusBadRequest)
			return
		}
		window = n
	}

	records, err := h.repo.GetAll(nil)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load records for insights")
		http.Error(w, "Failed to build insights", http.StatusInternalServerError)
		return
	}

	insights := BuildInsights(records, start, end, window)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(insights)
}

// dateRangeParams reads and validates start_date/end_date query parameters.
// Writes the error response itself and returns ok=false on bad input.
func (h *Handler) dateRangeParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	start := r.URL.Query().Get("start_date")
	end := r.URL.Query().Get("end_date")

	if start == "" || end == "" {
		http.Error(w, "start_date and end_date are required", http.StatusBadRequest)
		return "", "", false
	}
	if !isValidDate(start) || !isValidDate(end) {
		http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
		return "", "", false
	}

	return start, end, true
}

// isValidDate validates YYYY-MM-DD format
func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}
