package archive

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sksuman14/blesense/internal/sense"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-readings.sql
var getReadingsSQL string

//go:embed sql/get-addresses.sql
var getAddressesSQL string

//go:embed sql/get-readings-count.sql
var getReadingsCountSQL string

// ArchivedReading is one persisted decode success. Reading is the JSON
// serialization of the typed reading at the time it was archived.
type ArchivedReading struct {
	Address    string          `json:"address"`
	DeviceType string          `json:"device_type"`
	SensorID   string          `json:"sensor_id"`
	At         time.Time       `json:"at"`
	Reading    json.RawMessage `json:"reading"`
}

type ReadingRepository interface {
	InsertReading(address string, entry sense.HistoryEntry) error
	GetReadings(address string, limit int) ([]ArchivedReading, error)
	GetReadingsCount(address string) (int, error)
	GetAddresses() ([]string, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ReadingRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertReading(address string, entry sense.HistoryEntry) error {
	if entry.Reading == nil {
		return fmt.Errorf("refusing to archive empty reading for %q", address)
	}

	body, err := json.Marshal(entry.Reading)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}

	tsStr := entry.At.UTC().Format(time.RFC3339Nano)
	_, err = r.db.Exec(insertReadingSQL,
		address,
		entry.Reading.Type().String(),
		entry.Reading.SensorID(),
		tsStr,
		string(body),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

func (r *repositoryImpl) GetReadings(address string, limit int) ([]ArchivedReading, error) {
	rows, err := r.db.Query(getReadingsSQL, address, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()

	var out []ArchivedReading
	for rows.Next() {
		var (
			rec  ArchivedReading
			ts   string
			body string
		)
		if err := rows.Scan(&rec.Address, &rec.DeviceType, &rec.SensorID, &ts, &body); err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		rec.At = t
		rec.Reading = json.RawMessage(body)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetReadingsCount(address string) (int, error) {
	var n int
	err := r.db.QueryRow(getReadingsCountSQL, address).Scan(&n)
	return n, err
}

func (r *repositoryImpl) GetAddresses() ([]string, error) {
	rows, err := r.db.Query(getAddressesSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close addresses rows", "error", err)
		}
	}()

	var out []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, rows.Err()
}

// Sink adapts the repository to the pipeline's sink interface.
type Sink struct {
	repo ReadingRepository
}

func NewSink(repo ReadingRepository) *Sink {
	return &Sink{repo: repo}
}

// OnReading persists one decode success. Implements sense.Sink.
func (s *Sink) OnReading(address string, entry sense.HistoryEntry) error {
	return s.repo.InsertReading(address, entry)
}
