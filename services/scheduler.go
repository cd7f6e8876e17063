package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron"
)

// CryptoExpirer is satisfied by MockCryptoProvider.
type CryptoExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers the crypto expiry sweep to run every minute.
func NewScheduler(expirer CryptoExpirer) (*Scheduler, error) {
	c := cron.New()
	if err := c.AddFunc("@every 1m", func() { SweepCryptoPayments(expirer) }); err != nil {
		return nil, err
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }
func (s *Scheduler) Stop()  { s.cron.Stop() }

// SweepCryptoPayments expires overdue pending crypto payments and returns the
// number it changed.
func SweepCryptoPayments(expirer CryptoExpirer) int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := expirer.ExpireStale(ctx)
	if err != nil {
		log.Printf("Crypto expiry sweep failed: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("Expired %d pending crypto payments", n)
	}
	return n
}
