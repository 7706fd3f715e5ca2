package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/opad/internal/pkg/env"
)

const statsInterval = 5 * time.Minute

// Manager owns the process-wide queue and logs its depth while running.
type Manager struct {
	queue *Queue

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager sizes the shared queue from JOB_WORKERS on first use.
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = NewManager(NewQueue(env.GetEnvInt("JOB_WORKERS", DefaultWorkers)))
	})
	return globalManager
}

func NewManager(queue *Queue) *Manager {
	return &Manager{queue: queue}
}

func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// Start is a no-op while already running.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	m.queue.Start()
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.reportStats(ctx, statsInterval)
	log.Info("[JobQueue] Manager started")
}

// Stop drains the workers. Jobs still pending stay in Redis for the next run.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel == nil {
		return
	}

	m.cancel()
	<-m.done
	m.cancel = nil
	m.queue.Stop()
	log.Info("[JobQueue] Manager stopped")
}

func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Manager) reportStats(ctx context.Context, every time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.logStats(ctx)
		}
	}
}

func (m *Manager) logStats(ctx context.Context) {
	pending, err := m.queue.GetQueueSize(ctx)
	if err != nil {
		log.Warnf("[JobQueue] stats unavailable: %v", err)
		return
	}
	processing, _ := m.queue.GetProcessingSize(ctx)
	totals, _ := m.queue.GetJobStats(ctx)
	log.Infof("[JobQueue] pending=%d processing=%d completed=%d failed=%d",
		pending, processing, totals[JobStatusCompleted], totals[JobStatusFailed])
}
