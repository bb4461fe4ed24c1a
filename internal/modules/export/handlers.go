package export

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
	"github.com/fahimtalukderraj-lang/salesapp/internal/utils"
)

var csvHeader = []string{
	"id",
	"date",
	"total_store_sales",
	"store_subtotal_profit",
	"gas_total_profit",
	"net_profit",
	"raw_json",
}

// Handler handles export HTTP requests
type Handler struct {
	repo *entries.Repository
	log  zerolog.Logger
}

// NewHandler creates a new export handler
func NewHandler(repo *entries.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "export").Logger(),
	}
}

// RegisterRoutes registers all export routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/export", func(r chi.Router) {
		r.Get("/csv", h.HandleExportCSV)
	})
}

// HandleExportCSV handles GET /csv - download stored entries as a CSV
// attachment, optionally filtered to [start_date, end_date].
func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	defer utils.OperationTimer("export_csv", h.log)()

	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")

	var records []entries.StoredRecord
	var err error

	switch {
	case startDate != "" && endDate != "":
		if !isValidDate(startDate) || !isValidDate(endDate) {
			http.Error(w, "Invalid date format. Use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		records, err = h.repo.GetByDateRange(startDate, endDate)
	case startDate == "" && endDate == "":
		records, err = h.repo.GetAll(nil)
	default:
		http.Error(w, "Provide both start_date and end_date, or neither", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load records for export")
		http.Error(w, "Failed to export entries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=daily_sales_export.csv")

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		h.log.Error().Err(err).Msg("Failed to write CSV header")
		return
	}

	for _, rec := range records {
		rawJSON, err := json.Marshal(rec.Payload)
		if err != nil {
			h.log.Warn().Err(err).Int64("id", rec.ID).Msg("Skipping unserializable record")
			continue
		}

		res := rec.Payload.Results
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.EntryDate,
			formatAmount(res.TotalSalesStore),
			formatAmount(res.StoreSubtotalProfit),
			formatAmount(res.GasTotalProfit),
			formatAmount(res.NetProfit),
			string(rawJSON),
		}
		if err := cw.Write(row); err != nil {
			h.log.Error().Err(err).Int64("id", rec.ID).Msg("Failed to write CSV row")
			return
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		h.log.Error().Err(err).Msg("Failed to flush CSV output")
	}

	h.log.Info().Int("rows", len(records)).Msg("CSV export served")
}

// formatAmount renders a currency value with two decimals
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// isValidDate validates YYYY-MM-DD format
func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}
