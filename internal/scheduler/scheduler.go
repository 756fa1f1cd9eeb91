package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/zip-weather/internal/weather"
)

const defaultWarmInterval = 15 * time.Minute

// Refresher re-fetches and re-caches a ZIP code.
type Refresher interface {
	Refresh(ctx context.Context, zip weather.ZipCode) error
}

// Sweeper drops expired entries from an in-memory store.
type Sweeper interface {
	Sweep() int
}

// Scheduler keeps configured ZIP codes warm in the cache and, for the
// in-memory store, periodically sweeps expired entries.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	sweeper   Sweeper
	zips      []weather.ZipCode
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. sweeper may be nil.
func New(zips []weather.ZipCode, interval time.Duration, refresher Refresher, sweeper Sweeper) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		sweeper:   sweeper,
		zips:      zips,
		interval:  interval,
		timeout:   30 * time.Second,
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.zips) == 0 && s.sweeper == nil {
		log.Println("scheduler: nothing to schedule")
		return nil
	}

	if len(s.zips) > 0 {
		interval := s.interval
		if interval <= 0 {
			interval = defaultWarmInterval
		}
		if _, err := s.scheduler.Every(interval).Do(s.RunWarm); err != nil {
			return err
		}
	}

	if s.sweeper != nil {
		if _, err := s.scheduler.Every(1).Minutes().Do(s.runSweep); err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// RunWarm refreshes every configured ZIP concurrently. One failure does not
// stop the others.
func (s *Scheduler) RunWarm() {
	log.Printf("scheduler: warming %d zip codes", len(s.zips))

	var wg sync.WaitGroup
	for _, zip := range s.zips {
		wg.Add(1)
		go func(zip weather.ZipCode) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if err := s.refresher.Refresh(ctx, zip); err != nil {
				log.Printf("scheduler: refresh failed for %s: %v", zip, err)
			}
		}(zip)
	}
	wg.Wait()
	log.Println("scheduler: completed warm job")
}

func (s *Scheduler) runSweep() {
	if n := s.sweeper.Sweep(); n > 0 {
		log.Printf("scheduler: swept %d expired entries", n)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
