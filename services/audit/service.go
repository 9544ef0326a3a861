package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agentkit/agentctl/models"
	"github.com/agentkit/agentctl/repositories"
	"go.uber.org/zap"
)

// Service records invocations asynchronously. Records are queued on a
// buffered channel and written to the repository by background workers so
// that a slow or unavailable database never delays a tool run.
type Service struct {
	repo        repositories.InvocationRepository
	logger      *zap.Logger
	invChan     chan *models.Invocation
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the audit Service
type Config struct {
	BufferSize  int
	WorkerCount int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewService creates a new audit service instance
func NewService(repo repositories.InvocationRepository, logger *zap.Logger, cfg Config) *Service {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig().WorkerCount
	}

	return &Service{
		repo:        repo,
		logger:      logger,
		invChan:     make(chan *models.Invocation, cfg.BufferSize),
		workerCount: cfg.WorkerCount,
		bufferSize:  cfg.BufferSize,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop drains the queue and stops the workers. Pending records are flushed
// until the timeout elapses.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_records", len(s.invChan)))

	close(s.invChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Record queues an invocation without blocking. When the buffer is full the
// record is dropped with a warning.
func (s *Service) Record(ctx context.Context, inv *models.Invocation) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		s.logger.Warn("audit service not started, dropping record",
			zap.String("tool", inv.Tool))
		return
	}
	s.mu.Unlock()

	inv.Finalize()

	select {
	case s.invChan <- inv:
	default:
		s.logger.Warn("audit buffer full, dropping record",
			zap.String("tool", inv.Tool),
			zap.String("id", inv.ID.String()))
	}
}

// worker processes invocations from the channel
func (s *Service) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for inv := range s.invChan {
		if err := s.store(inv); err != nil {
			s.logger.Error("failed to store invocation",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("tool", inv.Tool),
				zap.String("id", inv.ID.String()))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

func (s *Service) store(inv *models.Invocation) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.repo.Insert(ctx, inv)
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize     int
	PendingRecords int
	WorkerCount    int
	Started        bool
}

// GetStats returns statistics about the audit service
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:     s.bufferSize,
		PendingRecords: len(s.invChan),
		WorkerCount:    s.workerCount,
		Started:        s.started,
	}
}
