package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/cloud-weather/internal/weather"
)

const schema = `
CREATE TABLE IF NOT EXISTS precipitation (
	id            TEXT PRIMARY KEY,
	zip_code      TEXT NOT NULL,
	created_on    TEXT NOT NULL,
	weather_type  TEXT NOT NULL,
	amount_inches TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS precipitation_zip_created ON precipitation (zip_code, created_on);

CREATE TABLE IF NOT EXISTS temperature (
	id          TEXT PRIMARY KEY,
	zip_code    TEXT NOT NULL,
	created_on  TEXT NOT NULL,
	temp_high_f TEXT NOT NULL,
	temp_low_f  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS temperature_zip_created ON temperature (zip_code, created_on);

CREATE TABLE IF NOT EXISTS weather_report (
	id                    TEXT PRIMARY KEY,
	zip_code              TEXT NOT NULL,
	days                  INTEGER NOT NULL,
	created_on            TEXT NOT NULL,
	average_high_f        TEXT NOT NULL,
	average_low_f         TEXT NOT NULL,
	rainfall_total_inches TEXT NOT NULL,
	snow_total_inches     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS weather_report_zip_days_created ON weather_report (zip_code, days, created_on);
`

// timeLayout is fixed-width UTC with nanoseconds, so text order is time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_on %q: %w", s, err)
	}
	return t, nil
}

// SQLiteStore persists observations and reports using sqlite
// (pure Go driver modernc.org/sqlite). Timestamps are stored as timeLayout text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dsn and applies the schema.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// inTx runs fn in its own short-lived transaction.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, r weather.WeatherReport) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO weather_report
			(id, zip_code, days, created_on, average_high_f, average_low_f, rainfall_total_inches, snow_total_inches)
			VALUES (?,?,?,?,?,?,?,?)`,
			r.ID.String(), r.ZipCode, r.Days, formatTime(r.CreatedOn),
			r.AverageHighF.String(), r.AverageLowF.String(),
			r.RainfallTotalInches.String(), r.SnowTotalInches.String())
		return err
	})
}

const reportColumns = `id, zip_code, days, created_on, average_high_f, average_low_f, rainfall_total_inches, snow_total_inches`

func (s *SQLiteStore) FindReport(ctx context.Context, zip string, days int, notBefore time.Time) (weather.WeatherReport, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM weather_report
		WHERE zip_code = ? AND days = ? AND created_on >= ?
		ORDER BY created_on DESC LIMIT 1`,
		zip, days, formatTime(notBefore))

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.WeatherReport{}, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) ListReports(ctx context.Context, zip string) ([]weather.WeatherReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+reportColumns+` FROM weather_report
		WHERE zip_code = ? ORDER BY created_on DESC`, zip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weather.WeatherReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (weather.WeatherReport, error) {
	var (
		r       weather.WeatherReport
		created string
	)
	if err := row.Scan(&r.ID, &r.ZipCode, &r.Days, &created,
		&r.AverageHighF, &r.AverageLowF, &r.RainfallTotalInches, &r.SnowTotalInches); err != nil {
		return weather.WeatherReport{}, err
	}
	var err error
	if r.CreatedOn, err = parseTime(created); err != nil {
		return weather.WeatherReport{}, err
	}
	return r, nil
}

// Precipitation returns the precipitation observation store backed by this database.
func (s *SQLiteStore) Precipitation() weather.ObservationStore[weather.Precipitation] {
	return precipitationTable{s}
}

// Temperature returns the temperature observation store backed by this database.
func (s *SQLiteStore) Temperature() weather.ObservationStore[weather.Temperature] {
	return temperatureTable{s}
}

type precipitationTable struct{ s *SQLiteStore }

func (t precipitationTable) Add(ctx context.Context, p weather.Precipitation) error {
	return t.s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO precipitation
			(id, zip_code, created_on, weather_type, amount_inches) VALUES (?,?,?,?,?)`,
			p.ID.String(), p.ZipCode, formatTime(p.CreatedOn), string(p.WeatherType), p.AmountInches.String())
		return err
	})
}

func (t precipitationTable) Since(ctx context.Context, zip string, since time.Time) ([]weather.Precipitation, error) {
	rows, err := t.s.db.QueryContext(ctx, `SELECT id, zip_code, created_on, weather_type, amount_inches
		FROM precipitation WHERE zip_code = ? AND created_on > ? ORDER BY created_on`,
		zip, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weather.Precipitation
	for rows.Next() {
		var (
			p       weather.Precipitation
			created string
			kind    string
		)
		if err := rows.Scan(&p.ID, &p.ZipCode, &created, &kind, &p.AmountInches); err != nil {
			return nil, err
		}
		if p.CreatedOn, err = parseTime(created); err != nil {
			return nil, err
		}
		p.WeatherType = weather.WeatherType(kind)
		out = append(out, p)
	}
	return out, rows.Err()
}

type temperatureTable struct{ s *SQLiteStore }

func (t temperatureTable) Add(ctx context.Context, temp weather.Temperature) error {
	return t.s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO temperature
			(id, zip_code, created_on, temp_high_f, temp_low_f) VALUES (?,?,?,?,?)`,
			temp.ID.String(), temp.ZipCode, formatTime(temp.CreatedOn), temp.TempHighF.String(), temp.TempLowF.String())
		return err
	})
}

func (t temperatureTable) Since(ctx context.Context, zip string, since time.Time) ([]weather.Temperature, error) {
	rows, err := t.s.db.QueryContext(ctx, `SELECT id, zip_code, created_on, temp_high_f, temp_low_f
		FROM temperature WHERE zip_code = ? AND created_on > ? ORDER BY created_on`,
		zip, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []weather.Temperature
	for rows.Next() {
		var (
			temp    weather.Temperature
			created string
		)
		if err := rows.Scan(&temp.ID, &temp.ZipCode, &created, &temp.TempHighF, &temp.TempLowF); err != nil {
			return nil, err
		}
		if temp.CreatedOn, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, temp)
	}
	return out, rows.Err()
}
