package app

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sksuman14/blesense/internal/archive"
	"github.com/sksuman14/blesense/internal/ble"
	"github.com/sksuman14/blesense/internal/config"
	"github.com/sksuman14/blesense/internal/httpapi"
	"github.com/sksuman14/blesense/internal/mqtt"
	"github.com/sksuman14/blesense/internal/sense"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"bleAdapter", cfg.BLEAdapter,
		"scanQueueSize", cfg.ScanQueueSize,
		"scanActiveWindow", cfg.ScanActiveWindow,
		"scanIdleWindow", cfg.ScanIdleWindow,
		"mqttBroker", cfg.MQTTBroker,
		"sqlitePath", cfg.SQLitePath,
	)

	var sinks []sense.Sink

	dbConn, err := openArchive(cfg)
	if err != nil {
		return err
	}
	if dbConn != nil {
		defer func() {
			if closeErr := archive.Close(dbConn); closeErr != nil {
				slog.Error("db close", "error", closeErr)
			}
		}()
		sinks = append(sinks, archive.NewSink(archive.NewRepository(dbConn)))
		slog.Info("archive enabled", "path", cfg.SQLitePath)
	}

	var publisher *mqtt.Publisher
	if cfg.MQTTBroker != "" {
		publisher = mqtt.NewPublisher(cfg, slog.Default())
		// Short timeout for the initial connect so a down broker does not
		// block startup; paho keeps retrying in the background.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := publisher.Connect(connectCtx); err != nil {
			slog.Warn("mqtt connect failed (continuing without live publish)", "error", err)
		}
		connectCancel()
		defer publisher.Disconnect()
		sinks = append(sinks, publisher)
	}

	pipeline := sense.NewPipeline(
		sense.WithQueueSize(cfg.ScanQueueSize),
		sense.WithSinks(sinks...),
	)
	go func() {
		if err := pipeline.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("pipeline stopped", "error", err)
		}
	}()

	if cfg.ScanIdleWindow > 0 {
		pipeline.StartPeriodic(ctx, cfg.ScanActiveWindow, cfg.ScanIdleWindow)
		slog.Info("periodic scanning", "active", cfg.ScanActiveWindow, "idle", cfg.ScanIdleWindow)
	} else {
		pipeline.Start()
		slog.Info("continuous scanning")
	}

	listener := ble.NewListener(ble.Options{Adapter: cfg.BLEAdapter})
	go func() {
		if err := listener.Run(ctx, pipeline.Handle); err != nil {
			slog.Warn("ble listener could not be initialized; continuing without live scan results",
				"error", err,
			)
		}
	}()

	mux := httpapi.NewMux(ctx, pipeline, dbConn)
	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// openArchive opens and migrates the SQLite archive, or returns nil when it
// is disabled by configuration.
func openArchive(cfg config.Config) (*sql.DB, error) {
	if cfg.SQLitePath == "" && cfg.SQLiteDSN == "" {
		return nil, nil
	}
	dbConn, err := archive.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := archive.Migrate(dbConn); err != nil {
		_ = archive.Close(dbConn)
		return nil, err
	}
	return dbConn, nil
}
