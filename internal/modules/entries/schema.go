package entries

import "database/sql"

// DailySalesSchema holds one row per saved business day. The payload column
// carries the full {data, results} bundle as JSON so a record can be
// re-displayed without recomputation.
const DailySalesSchema = `
CREATE TABLE IF NOT EXISTS daily_sales (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_date TEXT NOT NULL,
    payload TEXT NOT NULL,
    saved_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_daily_sales_entry_date ON daily_sales(entry_date);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(DailySalesSchema)
	return err
}
