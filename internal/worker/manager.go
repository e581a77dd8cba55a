package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// stopTimeout - сколько ждать завершения фоновых задач при остановке
const stopTimeout = 30 * time.Second

// Manager запускает и останавливает фоновые задачи процесса воркера.
// Сейчас это только периодическое обновление метаданных, но задач
// может быть несколько.
type Manager struct {
	jobs   []Worker
	logger *zap.Logger
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewManager создает пустой Manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register добавляет задачу. Регистрировать можно только до Start.
func (m *Manager) Register(w Worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.jobs = append(m.jobs, w)
	m.logger.Info("Background job registered", zap.String("name", w.Name()))
}

// Start запускает каждую зарегистрированную задачу в своей горутине
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	jobs := make([]Worker, len(m.jobs))
	copy(jobs, m.jobs)
	m.mu.Unlock()

	if len(jobs) == 0 {
		return fmt.Errorf("no background jobs registered")
	}

	m.logger.Info("Starting background jobs", zap.Int("count", len(jobs)))

	for _, job := range jobs {
		m.wg.Add(1)
		go func(w Worker) {
			defer m.wg.Done()

			m.logger.Info("Background job started", zap.String("name", w.Name()))
			if err := w.Start(ctx); err != nil {
				m.logger.Error("Background job exited with error",
					zap.String("name", w.Name()),
					zap.Error(err))
			}
		}(job)
	}

	return nil
}

// Stop сигнализирует всем задачам о завершении и ждет их не дольше
// stopTimeout
func (m *Manager) Stop() error {
	m.mu.Lock()
	jobs := make([]Worker, len(m.jobs))
	copy(jobs, m.jobs)
	m.mu.Unlock()

	m.logger.Info("Stopping background jobs", zap.Int("count", len(jobs)))

	for _, job := range jobs {
		if err := job.Stop(); err != nil {
			m.logger.Error("Failed to stop background job",
				zap.String("name", job.Name()),
				zap.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("All background jobs stopped")
		return nil
	case <-time.After(stopTimeout):
		m.logger.Warn("Background jobs did not stop in time",
			zap.Duration("timeout", stopTimeout))
		return fmt.Errorf("background jobs shutdown timed out after %v", stopTimeout)
	}
}
