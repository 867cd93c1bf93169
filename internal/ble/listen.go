package ble

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tinygo.org/x/bluetooth"

	"github.com/sksuman14/blesense/internal/sense"
)

type Options struct {
	Adapter string // "hci0" by default
}

// Listener wraps BlueZ scanning with context cancellation. Every
// advertisement is forwarded as-is; classification and payload filtering
// belong to the pipeline.
type Listener struct {
	adapter *bluetooth.Adapter
	opts    Options
}

func NewListener(opts Options) *Listener {
	if opts.Adapter == "" {
		opts.Adapter = "hci0"
	}

	return &Listener{
		adapter: bluetooth.NewAdapter(opts.Adapter),
		opts:    opts,
	}
}

func (l *Listener) Run(ctx context.Context, onAdvertisement func(sense.Advertisement)) error {
	slog.Info("ble: enabling adapter", "adapter", l.opts.Adapter)
	if err := l.adapter.Enable(); err != nil {
		return fmt.Errorf("ble enable (%s): %w", l.opts.Adapter, err)
	}
	slog.Info("ble: adapter enabled", "adapter", l.opts.Adapter)

	go func() {
		<-ctx.Done()
		_ = l.adapter.StopScan()
	}()

	slog.Info("ble: scanning started", "adapter", l.opts.Adapter)

	// adapter.Scan blocks until StopScan() or error.
	err := l.adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
		adv := sense.Advertisement{
			Name:    r.LocalName(),
			Address: r.Address.String(),
			RSSI:    r.RSSI,
			SeenAt:  time.Now(),
		}

		for _, md := range r.ManufacturerData() {
			if adv.ManufacturerData == nil {
				adv.ManufacturerData = make(map[uint16][]byte)
			}
			adv.ManufacturerData[md.CompanyID] = append([]byte(nil), md.Data...)
		}

		if onAdvertisement != nil {
			onAdvertisement(adv)
		}
	})

	// If ctx canceled, treat as clean shutdown.
	if ctx.Err() != nil {
		slog.Info("ble: scanning stopped (context canceled)")
		return nil
	}

	if err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}

	slog.Info("ble: scanning stopped")
	return nil
}
