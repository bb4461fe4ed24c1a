package entries

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fahimtalukderraj-lang/salesapp/internal/database"
)

// Repository handles daily entry persistence
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new daily entry repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "entries").Logger(),
	}
}

// Create persists one computed entry and returns the stored record
func (r *Repository) Create(entry *DailyEntry, results SummaryResult) (*StoredRecord, error) {
	payload := EntryPayload{Data: *entry, Results: results}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	savedAt := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.Exec(
		"INSERT INTO daily_sales (entry_date, payload, saved_at) VALUES (?, ?, ?)",
		entry.EntryDate,
		string(payloadJSON),
		savedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert daily entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	return &StoredRecord{
		ID:        id,
		EntryDate: entry.EntryDate,
		Payload:   payload,
		SavedAt:   savedAt,
	}, nil
}

// GetAll retrieves all stored records, newest first, with optional limit
func (r *Repository) GetAll(limit *int) ([]StoredRecord, error) {
	query := "SELECT id, entry_date, payload, saved_at FROM daily_sales ORDER BY entry_date DESC, id DESC"

	if limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *limit)
	}

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily entries: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// GetByDateRange retrieves records whose entry_date falls in [startDate, endDate],
// both ends inclusive, newest first. An inverted range simply matches nothing.
func (r *Repository) GetByDateRange(startDate, endDate string) ([]StoredRecord, error) {
	query := `
		SELECT id, entry_date, payload, saved_at
		FROM daily_sales
		WHERE entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date DESC, id DESC
	`

	rows, err := r.db.Query(query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query by date range: %w", err)
	}
	defer rows.Close()

	return r.scanRecords(rows)
}

// GetByID retrieves a single record, or nil if it does not exist
func (r *Repository) GetByID(id int64) (*StoredRecord, error) {
	var rec StoredRecord
	var payloadJSON string

	err := r.db.QueryRow(
		"SELECT id, entry_date, payload, saved_at FROM daily_sales WHERE id = ?",
		id,
	).Scan(&rec.ID, &rec.EntryDate, &payloadJSON, &rec.SavedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily entry: %w", err)
	}

	r.decodePayload(rec.ID, payloadJSON, &rec.Payload)
	return &rec, nil
}

// Count returns the number of stored records
func (r *Repository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM daily_sales").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count daily entries: %w", err)
	}
	return count, nil
}

// ResetStore deletes every stored record, restarts the ID sequence and
// returns how many rows were removed. VACUUM runs outside the transaction
// since SQLite forbids it inside one.
func (r *Repository) ResetStore() (int64, error) {
	var deleted int64

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM daily_sales")
		if err != nil {
			return fmt.Errorf("failed to delete daily entries: %w", err)
		}
		deleted, _ = result.RowsAffected()

		if _, err := tx.Exec("DELETE FROM sqlite_sequence WHERE name = 'daily_sales'"); err != nil {
			return fmt.Errorf("failed to reset ID sequence: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if _, err := r.db.Exec("VACUUM"); err != nil {
		return deleted, fmt.Errorf("failed to vacuum after reset: %w", err)
	}

	r.log.Info().Int64("rows_deleted", deleted).Msg("Store reset: all daily entries deleted")
	return deleted, nil
}

// scanRecords is a helper to scan multiple stored records
func (r *Repository) scanRecords(rows *sql.Rows) ([]StoredRecord, error) {
	var records []StoredRecord

	for rows.Next() {
		var rec StoredRecord
		var payloadJSON string

		if err := rows.Scan(&rec.ID, &rec.EntryDate, &payloadJSON, &rec.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan daily entry: %w", err)
		}

		r.decodePayload(rec.ID, payloadJSON, &rec.Payload)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily entries: %w", err)
	}

	return records, nil
}

// decodePayload unmarshals a stored payload. A malformed payload degrades to
// an empty one so a single corrupt row cannot take down listings or reports.
func (r *Repository) decodePayload(id int64, payloadJSON string, out *EntryPayload) {
	if err := json.Unmarshal([]byte(payloadJSON), out); err != nil {
		r.log.Warn().Err(err).Int64("id", id).Msg("Malformed payload, using empty entry")
		*out = EntryPayload{}
	}
}
