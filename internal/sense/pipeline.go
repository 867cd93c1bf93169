package sense

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sksuman14/blesense/internal/utils"
)

const defaultQueueSize = 256

// Sink receives each successfully decoded reading from the pipeline's
// consumer goroutine. Errors are logged, never propagated: a failing sink
// must not stall scanning.
type Sink interface {
	OnReading(address string, entry HistoryEntry) error
}

// Pipeline turns raw advertisement events into roster/history state. Events
// enter through Handle (called from the scanner's callback goroutine), pass
// through a bounded queue and are processed by the single consumer started
// with Run, so roster, history and the data-logger accumulator only ever
// see one writer.
type Pipeline struct {
	queue     chan Advertisement
	scanning  atomic.Bool
	roster    *Roster
	history   *HistoryStore
	loggerLog *Accumulator
	sinks     []Sink
	log       *slog.Logger

	periodicMu     sync.Mutex
	periodicCancel context.CancelFunc

	updates chan struct{}
}

type Option func(*Pipeline)

// WithQueueSize bounds the event queue. Events arriving while the queue is
// full are dropped with a warning rather than blocking the scan callback.
func WithQueueSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.queue = make(chan Advertisement, n)
		}
	}
}

// WithSinks attaches downstream consumers of decoded readings.
func WithSinks(sinks ...Sink) Option {
	return func(p *Pipeline) {
		p.sinks = append(p.sinks, sinks...)
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

func NewPipeline(options ...Option) *Pipeline {
	p := &Pipeline{
		roster:    NewRoster(),
		history:   NewHistoryStore(),
		loggerLog: NewAccumulator(),
		log:       slog.Default(),
		updates:   make(chan struct{}, 1),
	}
	for _, option := range options {
		option(p)
	}
	if p.queue == nil {
		p.queue = make(chan Advertisement, defaultQueueSize)
	}
	return p
}

// Run consumes queued events until ctx is cancelled. It blocks; start it on
// its own goroutine. Events admitted before cancellation are processed to
// completion, never aborted mid-mutation.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case adv := <-p.queue:
			p.process(adv)
		}
	}
}

// Handle admits one advertisement event. Events are dropped while the
// pipeline is idle or the queue is full; admission never blocks the caller.
func (p *Pipeline) Handle(adv Advertisement) {
	if !p.scanning.Load() {
		return
	}
	if adv.SeenAt.IsZero() {
		adv.SeenAt = time.Now()
	}
	select {
	case p.queue <- adv:
	default:
		p.log.Warn("event queue full, dropping advertisement", "addr", adv.Address)
	}
}

func (p *Pipeline) process(adv Advertisement) {
	// A panic out of a decoder on a hostile payload is confined to this
	// event; the device just keeps its previous state.
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error("panic while processing advertisement", "addr", adv.Address, "panic", rec)
		}
	}()

	payload, companyID, ok := adv.Payload()
	if !ok {
		// No manufacturer data: not one of ours, drop the event entirely.
		return
	}

	deviceType := Classify(adv.Name)

	var reading Reading
	if deviceType != Unknown {
		decoded, err := Decode(deviceType, payload)
		if err != nil {
			p.log.Debug("decode failed",
				"addr", adv.Address,
				"type", deviceType.String(),
				"company", utils.Hex4(companyID),
				"len", len(payload),
				"data", utils.BytesToHex(payload),
				"error", err,
			)
		} else {
			reading = decoded
		}
	}

	p.roster.Upsert(adv.Address, adv.Name, adv.RSSI, deviceType, reading, adv.SeenAt)

	if reading != nil {
		entry := HistoryEntry{At: adv.SeenAt, Reading: reading}
		p.history.Append(adv.Address, entry)

		if dl, ok := reading.(*DataLoggerReading); ok {
			p.loggerLog.Record(dl)
		}

		for _, s := range p.sinks {
			if err := s.OnReading(adv.Address, entry); err != nil {
				p.log.Warn("sink rejected reading", "addr", adv.Address, "error", err)
			}
		}
	}

	p.notify()
}

// notify coalesces change signals for UI collaborators.
func (p *Pipeline) notify() {
	select {
	case p.updates <- struct{}{}:
	default:
	}
}

// Start transitions the pipeline to SCANNING. Idempotent.
func (p *Pipeline) Start() {
	p.scanning.Store(true)
}

// Stop transitions the pipeline to IDLE. Idempotent and safe to call at any
// time; already-admitted events still finish processing.
func (p *Pipeline) Stop() {
	p.scanning.Store(false)
}

// IsScanning reports whether events are currently being admitted.
func (p *Pipeline) IsScanning() bool {
	return p.scanning.Load()
}

// StartPeriodic alternates fixed SCANNING and IDLE windows until ctx is
// cancelled or StopPeriodic is called. Only one cycle may run at a time;
// the return value reports whether this call started it.
func (p *Pipeline) StartPeriodic(ctx context.Context, active, idle time.Duration) bool {
	if active <= 0 || idle <= 0 {
		return false
	}

	p.periodicMu.Lock()
	if p.periodicCancel != nil {
		p.periodicMu.Unlock()
		return false
	}
	cctx, cancel := context.WithCancel(ctx)
	p.periodicCancel = cancel
	p.periodicMu.Unlock()

	// Enter the first SCANNING window before returning so callers observe
	// the transition immediately.
	p.Start()
	go p.runPeriodic(cctx, active, idle)
	return true
}

func (p *Pipeline) runPeriodic(ctx context.Context, active, idle time.Duration) {
	defer func() {
		p.periodicMu.Lock()
		p.periodicCancel = nil
		p.periodicMu.Unlock()
	}()

	inWindow := true
	timer := time.NewTimer(active)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return
		case <-timer.C:
			if inWindow {
				p.Stop()
				timer.Reset(idle)
			} else {
				p.Start()
				timer.Reset(active)
			}
			inWindow = !inWindow
		}
	}
}

// StopPeriodic cancels a running periodic cycle, if any, leaving the
// pipeline idle. Safe to call when none is running.
func (p *Pipeline) StopPeriodic() {
	p.periodicMu.Lock()
	cancel := p.periodicCancel
	p.periodicMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Devices returns a snapshot of the roster in arrival order.
func (p *Pipeline) Devices() []DiscoveredDevice {
	return p.roster.Devices()
}

// HistoryFor returns the bounded history for one address, oldest first.
func (p *Pipeline) HistoryFor(address string) []HistoryEntry {
	return p.history.History(address)
}

// HistoryAddresses returns every address with recorded history.
func (p *Pipeline) HistoryAddresses() []string {
	return p.history.Addresses()
}

// LatestPacketID returns the most recent data-logger packet id, -1 if none.
func (p *Pipeline) LatestPacketID() int {
	return p.loggerLog.LatestPacketID()
}

// DataLoggerHistory returns the session-global data-logger log.
func (p *Pipeline) DataLoggerHistory() []*DataLoggerReading {
	return p.loggerLog.History()
}

// ClearDevices empties the roster. Per-device history is untouched.
func (p *Pipeline) ClearDevices() {
	p.roster.Clear()
	p.notify()
}

// ClearHistory drops all per-device history and the data-logger log.
func (p *Pipeline) ClearHistory() {
	p.history.Clear()
	p.loggerLog.Reset()
	p.notify()
}

// Updates returns a coalesced notification channel: one receive means state
// changed at least once since the last receive.
func (p *Pipeline) Updates() <-chan struct{} {
	return p.updates
}
