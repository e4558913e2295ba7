package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultPollInterval is the reminder evaluation cadence.
const DefaultPollInterval = 30 * time.Second

// Ticker is evaluated on every poll.
type Ticker interface {
	Tick(ctx context.Context) []Reminder
}

// Poller drives a Ticker: one evaluation immediately on Start, then one per
// interval until Stop. Missed ticks are not replayed; the next tick simply
// evaluates the current time.
type Poller struct {
	scheduler *SchedulerService
	target    Ticker
	interval  time.Duration
	log       *zap.Logger

	mu      sync.Mutex
	entry   cron.EntryID
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewPoller(scheduler *SchedulerService, target Ticker, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		scheduler: scheduler,
		target:    target,
		interval:  interval,
		log:       log.Named("poller"),
	}
}

// Start begins the cadence. Calling Start on a running poller does nothing.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	entry, err := p.scheduler.ScheduleInterval(p.interval, p.tick)
	if err != nil {
		p.cancel()
		return err
	}
	p.entry = entry
	p.running = true

	p.tick()
	p.scheduler.Start()
	p.log.Info("reminder polling started", zap.Duration("interval", p.interval))
	return nil
}

// Stop cancels the cadence and waits for an in-flight evaluation. No tick
// runs after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.scheduler.Remove(p.entry)
	p.cancel()
	p.mu.Unlock()

	p.scheduler.Stop()
	p.log.Info("reminder polling stopped")
}

func (p *Poller) tick() {
	if p.ctx.Err() != nil {
		return
	}
	p.target.Tick(p.ctx)
}
