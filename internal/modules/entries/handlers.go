package entries

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/events"
)

// Handler handles daily entry HTTP requests
type Handler struct {
	repo *Repository
	bus  *events.Bus
	log  zerolog.Logger
}

// NewHandler creates a new entries handler
func NewHandler(repo *Repository, bus *events.Bus, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		bus:  bus,
		log:  log.With().Str("handler", "entries").Logger(),
	}
}

// RegisterRoutes registers all entry routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/entries", func(r chi.Router) {
		r.Post("/", h.HandleSaveEntry)
		r.Post("/preview", h.HandlePreviewEntry)
		r.Get("/", h.HandleGetEntries)
		r.Get("/{id}", h.HandleGetEntry)
	})
}

// HandleSaveEntry handles POST / - compute and persist a daily entry
func (h *Handler) HandleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var entry DailyEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if !isValidDate(entry.EntryDate) {
		http.Error(w, "Invalid entry_date. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	results := Compute(&entry)

	record, err := h.repo.Create(&entry, results)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to save entry")
		http.Error(w, "Failed to save entry", http.StatusInternalServerError)
		return
	}

	h.bus.Emit(events.EntrySaved, "entries", map[string]interface{}{
		"id":         record.ID,
		"entry_date": record.EntryDate,
		"net_profit": results.NetProfit,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// HandlePreviewEntry handles POST /preview - compute without persisting
func (h *Handler) HandlePreviewEntry(w http.ResponseWriter, r *http.Request) {
	var entry DailyEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	results := Compute(&entry)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(EntryPayload{Data: entry, Results: results})
}

// HandleGetEntries handles GET / - list stored entries, newest first
func (h *Handler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > 10000 {
			http.Error(w, "Invalid limit. Must be 1-10000", http.StatusBadRequest)
			return
		}
		limit = &l
	}

	records, err := h.repo.GetAll(limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get entries")
		http.Error(w, "Failed to retrieve entries", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []StoredRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}

// HandleGetEntry handles GET /{id} - fetch one stored entry
func (h *Handler) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		http.Error(w, "Invalid entry ID", http.StatusBadRequest)
		return
	}

	record, err := h.repo.GetByID(id)
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to get entry")
		http.Error(w, "Failed to retrieve entry", http.StatusInternalServerError)
		return
	}
	if record == nil {
		http.Error(w, "Entry not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

// isValidDate validates YYYY-MM-DD format
func isValidDate(dateStr string) bool {
	_, err := time.Parse("2006-01-02", dateStr)
	return err == nil
}
