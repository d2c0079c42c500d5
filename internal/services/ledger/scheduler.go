package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds configuration for the accrual scheduler.
type SchedulerConfig struct {
	// TickInterval is how often to scan for due investments.
	TickInterval time.Duration
}

// DefaultSchedulerConfig returns default scheduler configuration.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		TickInterval: 1 * time.Minute,
	}
}

// Scheduler is the accrual control loop. A single goroutine scans for due
// investments each tick and posts one accrual step per contract through the
// ledger service; each step takes its own locks, so one slow contract never
// blocks the rest.
type Scheduler struct {
	svc    Service
	config *SchedulerConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates an accrual scheduler.
func NewScheduler(svc Service, config *SchedulerConfig) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	return &Scheduler{
		svc:      svc,
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// Start starts the accrual loop.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("accrual scheduler already running")
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	log.Println("accrual scheduler started")

	s.wg.Add(1)
	go s.run()
	return nil
}

// Stop stops the accrual loop and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("accrual scheduler not running")
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()

	log.Println("accrual scheduler stopped")
	return nil
}

// IsRunning reports whether the loop is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	// Run immediately on start.
	s.pass()

	for {
		select {
		case <-ticker.C:
			s.pass()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) pass() {
	count, err := s.svc.AccrueDue(context.Background())
	if err != nil {
		log.Printf("accrual pass failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("accrual pass posted %d steps", count)
	}
}
