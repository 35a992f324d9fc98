package autoarchive

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the sweeper on a cron spec.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	sweeper *Sweeper
}

func NewScheduler(spec string, sweeper *Sweeper) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		spec:    spec,
		sweeper: sweeper,
	}
}

// Start registers the sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.sweeper.Sweep(ctx); err != nil {
			log.Printf("Auto-archive sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	log.Printf("Auto-archive scheduler started (spec %q)", s.spec)
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
