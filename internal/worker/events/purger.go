package eventsworker

import (
	"context"
	"time"

	"github.com/PrathamRathore123/Whatsapp-Bot/pkg/logging"
)

type purgeStore interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Purger deletes processed webhook ids older than the retention window.
type Purger struct {
	store     purgeStore
	logger    *logging.Logger
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

func NewPurger(store purgeStore, logger *logging.Logger) *Purger {
	if logger == nil {
		logger = logging.Default()
	}
	return &Purger{
		store:     store,
		logger:    logger,
		retention: 24 * time.Hour,
		interval:  time.Hour,
		now:       time.Now,
	}
}

func (p *Purger) WithRetention(d time.Duration) *Purger {
	if d > 0 {
		p.retention = d
	}
	return p
}

func (p *Purger) WithInterval(d time.Duration) *Purger {
	if d > 0 {
		p.interval = d
	}
	return p
}

// Run purges once immediately and then every interval until ctx is done.
func (p *Purger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.purge(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.purge(ctx)
		}
	}
}

func (p *Purger) purge(ctx context.Context) {
	if p.store == nil {
		return
	}
	n, err := p.store.Purge(ctx, p.now().Add(-p.retention))
	if err != nil {
		p.logger.Error("processed event purge failed", "error", err)
		return
	}
	if n > 0 {
		p.logger.Info("processed events purged", "count", n)
	}
}
