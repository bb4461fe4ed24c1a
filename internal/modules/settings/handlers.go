package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/config"
	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
	"github.com/fahimtalukderraj-lang/salesapp/internal/modules/entries"
)

// PaymentMethods are the named payment fields an entry form offers.
var PaymentMethods = []string{"cash", "credit", "debit", "ebt", "lottery_p_o", "cash_paid"}

// Defaults is what a client needs to render an empty entry form.
type Defaults struct {
	Categories     []config.CategoryDefault `json:"categories"`
	GasGrades      []string                 `json:"gas_grades"`
	PaymentMethods []string                 `json:"payment_methods"`
}

// Handler handles settings HTTP requests
type Handler struct {
	cfg  *config.Config
	repo *entries.Repository
	bus  *events.Bus
	log  zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(cfg *config.Config, repo *entries.Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:  cfg,
		repo: repo,
		bus:  bus,
		log:  log.With().Str("handler", "settings").Logger(),
	}
}

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/defaults", h.HandleGetDefaults)
		r.Post("/reset", h.HandleResetStore)
	})
}

// HandleGetDefaults handles GET /defaults - the configured entry form lists
func (h *Handler) HandleGetDefaults(w http.ResponseWriter, r *http.Request) {
	defaults := Defaults{
		Categories:     h.cfg.DefaultCategories,
		GasGrades:      h.cfg.DefaultGasGrades,
		PaymentMethods: PaymentMethods,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(defaults)
}

// HandleResetStore handles POST /reset - wipe every stored entry
func (h *Handler) HandleResetStore(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.repo.ResetStore()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to reset store")
		http.Error(w, "Failed to reset store", http.StatusInternalServerError)
		return
	}

	h.bus.Emit(events.StoreReset, "settings", map[string]interface{}{
		"rows_deleted": deleted,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":       "reset",
		"rows_deleted": deleted,
	})
}
