package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"energy-service/internal/models"

	_ "modernc.org/sqlite"
)

// SQLite stores records in a single database file.
type SQLite struct {
	conn *sql.DB
}

// NewSQLite opens the database at path and initializes the schema.
func NewSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one writer at a time, and the foreign_keys pragma is per connection
	conn.SetMaxOpenConns(1)

	db := &SQLite{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

func (db *SQLite) Close() error {
	return db.conn.Close()
}

func (db *SQLite) initSchema() error {
	schema := `
	PRAGMA foreign_keys = ON;
	CREATE TABLE IF NOT EXISTS bills (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_id TEXT NOT NULL,
		period_label TEXT NOT NULL,
		total_units REAL NOT NULL CHECK (total_units >= 0),
		bill_amount REAL NOT NULL CHECK (bill_amount >= 0),
		recorded_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS appliance_readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		bill_id INTEGER NOT NULL REFERENCES bills(id),
		appliance_name TEXT NOT NULL,
		power_rating_watts REAL NOT NULL,
		usage_hours REAL NOT NULL,
		energy_usage_kwh REAL NOT NULL,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bills_owner ON bills(owner_id);
	CREATE INDEX IF NOT EXISTS idx_bills_recorded ON bills(recorded_at, id);
	CREATE INDEX IF NOT EXISTS idx_readings_recorded ON appliance_readings(recorded_at, id);
	`

	_, err := db.conn.Exec(schema)
	return err
}

func (db *SQLite) SaveSubmission(ctx context.Context, sub models.NewSubmission, recordedAt time.Time) (models.BillingRecord, []models.ApplianceReading, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.BillingRecord{}, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	recordedAt = recordedAt.UTC()
	res, err := tx.ExecContext(ctx, `
	INSERT INTO bills (owner_id, period_label, total_units, bill_amount, recorded_at)
	VALUES (?, ?, ?, ?, ?)
	`, sub.OwnerID, sub.PeriodLabel, sub.TotalUnits, sub.BillAmount, recordedAt.UnixNano())
	if err != nil {
		return models.BillingRecord{}, nil, fmt.Errorf("inserting bill: %w", err)
	}
	billID, err := res.LastInsertId()
	if err != nil {
		return models.BillingRecord{}, nil, fmt.Errorf("reading bill id: %w", err)
	}

	bill := models.BillingRecord{
		ID:          billID,
		OwnerID:     sub.OwnerID,
		PeriodLabel: sub.PeriodLabel,
		TotalUnits:  sub.TotalUnits,
		BillAmount:  sub.BillAmount,
		RecordedAt:  recordedAt,
	}

	readings := make([]models.ApplianceReading, 0, len(sub.Appliances))
	for _, a := range sub.Appliances {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO appliance_readings (bill_id, appliance_name, power_rating_watts, usage_hours, energy_usage_kwh, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		`, billID, a.Name, a.PowerRatingWatts, a.UsageHours, a.EnergyUsageKWh, recordedAt.UnixNano())
		if err != nil {
			return models.BillingRecord{}, nil, fmt.Errorf("inserting reading for %s: %w", a.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return models.BillingRecord{}, nil, fmt.Errorf("reading appliance id: %w", err)
		}
		readings = append(readings, models.ApplianceReading{
			ID:               id,
			BillingRecordID:  billID,
			ApplianceName:    a.Name,
			PowerRatingWatts: a.PowerRatingWatts,
			UsageHours:       a.UsageHours,
			EnergyUsageKWh:   a.EnergyUsageKWh,
			RecordedAt:       recordedAt,
		})
	}

	if err := tx.Commit(); err != nil {
		return models.BillingRecord{}, nil, fmt.Errorf("committing submission: %w", err)
	}

	return bill, readings, nil
}

func (db *SQLite) HistoryFor(ctx context.Context, ownerID string) ([]models.BillingRecord, error) {
	return db.queryBills(ctx, `
	SELECT id, owner_id, period_label, total_units, bill_amount, recorded_at
	FROM bills
	WHERE owner_id = ?
	ORDER BY recorded_at, id
	`, ownerID)
}

func (db *SQLite) AllBills(ctx context.Context) ([]models.BillingRecord, error) {
	return db.queryBills(ctx, `
	SELECT id, owner_id, period_label, total_units, bill_amount, recorded_at
	FROM bills
	ORDER BY recorded_at, id
	`)
}

func (db *SQLite) queryBills(ctx context.Context, query string, args ...any) ([]models.BillingRecord, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bills: %w", err)
	}
	defer rows.Close()

	var results []models.BillingRecord
	for rows.Next() {
		var b models.BillingRecord
		var recordedAt int64
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.PeriodLabel, &b.TotalUnits, &b.BillAmount, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning bill: %w", err)
		}
		b.RecordedAt = time.Unix(0, recordedAt).UTC()
		results = append(results, b)
	}

	return results, rows.Err()
}

func (db *SQLite) AllApplianceReadings(ctx context.Context) ([]models.ApplianceReading, error) {
	rows, err := db.conn.QueryContext(ctx, `
	SELECT id, bill_id, appliance_name, power_rating_watts, usage_hours, energy_usage_kwh, recorded_at
	FROM appliance_readings
	ORDER BY recorded_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying appliance readings: %w", err)
	}
	defer rows.Close()

	var results []models.ApplianceReading
	for rows.Next() {
		var r models.ApplianceReading
		var recordedAt int64
		if err := rows.Scan(&r.ID, &r.BillingRecordID, &r.ApplianceName, &r.PowerRatingWatts, &r.UsageHours, &r.EnergyUsageKWh, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning appliance reading: %w", err)
		}
		r.RecordedAt = time.Unix(0, recordedAt).UTC()
		results = append(results, r)
	}

	return results, rows.Err()
}

func (db *SQLite) OwnerExists(ctx context.Context, ownerID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bills WHERE owner_id = ?)`, ownerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking owner: %w", err)
	}
	return exists, nil
}
