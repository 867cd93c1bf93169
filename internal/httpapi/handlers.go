package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sksuman14/blesense/internal/export"
	"github.com/sksuman14/blesense/internal/sense"
)

// controller exposes the pipeline's read and control surface over HTTP. The
// baseCtx bounds periodic scan cycles so they die with the app, not with
// the request that started them.
type controller struct {
	pipeline *sense.Pipeline
	exporter *export.Exporter
	db       *sql.DB // nil when the archive is disabled
	baseCtx  context.Context
}

func NewMux(baseCtx context.Context, pipeline *sense.Pipeline, db *sql.DB) *http.ServeMux {
	c := &controller{
		pipeline: pipeline,
		exporter: export.NewExporter(pipeline),
		db:       db,
		baseCtx:  baseCtx,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", c.handleHealthz)
	mux.HandleFunc("GET /api/devices", c.handleDevices)
	mux.HandleFunc("POST /api/devices/clear", c.handleClearDevices)
	mux.HandleFunc("GET /api/devices/{address}/history", c.handleHistory)
	mux.HandleFunc("GET /api/devices/{address}/export", c.handleExport)
	mux.HandleFunc("GET /api/datalogger", c.handleDataLogger)
	mux.HandleFunc("GET /api/scan", c.handleScanStatus)
	mux.HandleFunc("POST /api/scan/start", c.handleScanStart)
	mux.HandleFunc("POST /api/scan/stop", c.handleScanStop)
	mux.HandleFunc("POST /api/scan/periodic", c.handleScanPeriodic)
	return mux
}

func (c *controller) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if c.db != nil {
		var ok int
		if err := c.db.QueryRow(`SELECT 1`).Scan(&ok); err != nil {
			slog.Error("failed to check database connectivity", "error", err)
			WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *controller) handleDevices(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, c.pipeline.Devices())
}

func (c *controller) handleClearDevices(w http.ResponseWriter, r *http.Request) {
	c.pipeline.ClearDevices()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (c *controller) handleHistory(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		WriteError(w, http.StatusBadRequest, "missing device address")
		return
	}
	WriteJSON(w, http.StatusOK, c.pipeline.HistoryFor(address))
}

func (c *controller) handleExport(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		WriteError(w, http.StatusBadRequest, "missing device address")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", address+".csv"))
	if err := c.exporter.WriteDeviceCSV(w, address); err != nil {
		if errors.Is(err, export.ErrNoHistory) {
			// Too late for a JSON error once headers are out; an empty body
			// plus the log entry is the best we can do here.
			slog.Warn("export requested for device with no history", "addr", address)
			return
		}
		slog.Error("csv export failed", "addr", address, "error", err)
	}
}

func (c *controller) handleDataLogger(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"latest_packet_id": c.pipeline.LatestPacketID(),
		"history":          c.pipeline.DataLoggerHistory(),
	})
}

func (c *controller) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]bool{"scanning": c.pipeline.IsScanning()})
}

func (c *controller) handleScanStart(w http.ResponseWriter, r *http.Request) {
	c.pipeline.Start()
	WriteJSON(w, http.StatusOK, map[string]bool{"scanning": true})
}

func (c *controller) handleScanStop(w http.ResponseWriter, r *http.Request) {
	c.pipeline.StopPeriodic()
	c.pipeline.Stop()
	WriteJSON(w, http.StatusOK, map[string]bool{"scanning": false})
}

func (c *controller) handleScanPeriodic(w http.ResponseWriter, r *http.Request) {
	active, idle, err := parsePeriodicQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	started := c.pipeline.StartPeriodic(c.baseCtx, active, idle)
	if !started {
		WriteError(w, http.StatusConflict, "periodic scan already running")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"scanning":  true,
		"active_ms": active.Milliseconds(),
		"idle_ms":   idle.Milliseconds(),
	})
}

func parsePeriodicQuery(r *http.Request) (active, idle time.Duration, err error) {
	q := r.URL.Query()

	active = 30 * time.Second
	if s := q.Get("active"); s != "" {
		active, err = time.ParseDuration(s)
		if err != nil {
			return 0, 0, errors.New("invalid 'active' (expected duration, e.g. 30s)")
		}
	}
	idle = 30 * time.Second
	if s := q.Get("idle"); s != "" {
		idle, err = time.ParseDuration(s)
		if err != nil {
			return 0, 0, errors.New("invalid 'idle' (expected duration, e.g. 30s)")
		}
	}
	if active <= 0 || idle <= 0 {
		return 0, 0, errors.New("'active' and 'idle' must be positive")
	}
	return active, idle, nil
}
