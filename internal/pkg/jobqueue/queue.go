package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/opad/internal/pkg/cache"
	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

const (
	KeyNamespace = "opad:jobs"

	DefaultWorkers     = 3
	DefaultMaxAttempts = 3
	JobTTL             = 24 * time.Hour

	pollTimeout   = time.Second
	errorBackoff  = time.Second
	stuckAfter    = 10 * time.Minute
	sweepInterval = time.Minute
)

var (
	pendingKey    = KeyNamespace + ":pending"
	processingKey = KeyNamespace + ":processing"
	statsKey      = KeyNamespace + ":stats"
)

func jobKey(id string) string {
	return KeyNamespace + ":job:" + id
}

// Handler runs one job. A returned error counts as a failed attempt.
type Handler func(ctx context.Context, job *Job) error

// Queue moves job ids from a pending list to a processing list in Redis
// and runs them on a fixed number of workers.
type Queue struct {
	client  *redis.Client
	workers int
	now     func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	handlersMu sync.RWMutex
	handlers   map[JobType]Handler
	retryDelay time.Duration
}

// NewQueue uses the shared cache client.
func NewQueue(workers int) *Queue {
	return NewQueueWithClient(cache.GetClient(), workers)
}

func NewQueueWithClient(client *redis.Client, workers int) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		client:     client,
		workers:    workers,
		now:        time.Now,
		handlers:   make(map[JobType]Handler),
		retryDelay: time.Minute,
	}
}

// RegisterHandler binds h to jobType, replacing any earlier handler.
func (q *Queue) RegisterHandler(jobType JobType, h Handler) {
	q.handlersMu.Lock()
	q.handlers[jobType] = h
	q.handlersMu.Unlock()
}

func (q *Queue) handler(jobType JobType) (Handler, bool) {
	q.handlersMu.RLock()
	defer q.handlersMu.RUnlock()
	h, ok := q.handlers[jobType]
	return h, ok
}

// SetRetryDelay sets the back-off unit. Attempt n waits n units.
func (q *Queue) SetRetryDelay(d time.Duration) {
	q.retryDelay = d
}

func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true
	q.stopCh = make(chan struct{})

	log.Infof("[JobQueue] Starting %d workers", q.workers)
	q.wg.Add(q.workers + 1)
	for n := 1; n <= q.workers; n++ {
		go q.worker(n)
	}
	go q.sweepLoop(stuckAfter, sweepInterval)
}

// Stop waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return
	}
	close(q.stopCh)
	q.wg.Wait()
	q.running = false
	log.Info("[JobQueue] Stopped")
}

func (q *Queue) stopped() bool {
	select {
	case <-q.stopCh:
		return true
	default:
		return false
	}
}

func (q *Queue) worker(n int) {
	defer q.wg.Done()
	ctx := context.Background()

	for !q.stopped() {
		job, err := q.next(ctx)
		switch {
		case errors.Is(err, redis.Nil):
			// poll timed out
		case err != nil:
			log.Errorf("[JobQueue] worker %d: %v", n, err)
			select {
			case <-q.stopCh:
			case <-time.After(errorBackoff):
			}
		default:
			log.Debugf("[JobQueue] worker %d took %s (%s)", n, job.ID, job.Type)
			q.processJob(ctx, job)
		}
	}
}

// next blocks up to pollTimeout for a job id and loads its record.
func (q *Queue) next(ctx context.Context) (*Job, error) {
	id, err := q.client.BLMove(ctx, pendingKey, processingKey, "RIGHT", "LEFT", pollTimeout).Result()
	if err != nil {
		return nil, err
	}
	job, err := q.load(ctx, id)
	if err != nil {
		q.release(ctx, id)
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("job %s expired before it ran", id)
		}
		return nil, err
	}
	return job, nil
}

// EnqueueThumbnail schedules the preview of one day's picture.
func (q *Queue) EnqueueThumbnail(ctx context.Context, userID uint, date calendar.Date) error {
	_, err := q.Enqueue(ctx, JobTypePhotoThumbnail, ThumbnailPayload{UserID: userID, Date: date.String()})
	return err
}

// Enqueue stores a new job and pushes it onto the pending list.
func (q *Queue) Enqueue(ctx context.Context, jobType JobType, payload any) (*Job, error) {
	job, err := newJob(jobType, payload, q.now())
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, jobKey(job.ID), data, JobTTL)
		pipe.LPush(ctx, pendingKey, job.ID)
		pipe.HIncrBy(ctx, statsKey, string(JobStatusPending), 1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s job: %w", jobType, err)
	}
	log.Infof("[JobQueue] Enqueued %s job %s", job.Type, job.ID)
	return job, nil
}

func (q *Queue) processJob(ctx context.Context, job *Job) {
	defer q.release(ctx, job.ID)

	job.start(q.now())
	q.store(ctx, job)

	err := q.run(ctx, job)
	if err == nil {
		job.finish(q.now())
		q.count(ctx, JobStatusCompleted)
		if derr := q.client.Del(ctx, jobKey(job.ID)).Err(); derr != nil {
			log.Warnf("[JobQueue] Failed to drop finished job %s: %v", job.ID, derr)
		}
		log.Infof("[JobQueue] Job %s done", job.ID)
		return
	}

	retry := job.fail(err, q.now())
	q.store(ctx, job)
	if !retry {
		log.Errorf("[JobQueue] Job %s gave up after %d attempts: %v", job.ID, job.Attempts, err)
		q.count(ctx, JobStatusFailed)
		return
	}

	wait := q.retryDelay * time.Duration(job.Attempts)
	log.Warnf("[JobQueue] Job %s attempt %d/%d failed, next try in %s: %v", job.ID, job.Attempts, job.MaxAttempts, wait, err)
	id := job.ID
	time.AfterFunc(wait, func() {
		if perr := q.client.LPush(context.Background(), pendingKey, id).Err(); perr != nil {
			log.Errorf("[JobQueue] Failed to requeue job %s: %v", id, perr)
		}
	})
}

// run calls the registered handler. A panic counts as a failed attempt.
func (q *Queue) run(ctx context.Context, job *Job) (err error) {
	h, ok := q.handler(job.Type)
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, job)
}

// sweepLoop puts jobs back on the pending list that sat in processing
// longer than maxAge, which happens when a worker dies mid-job.
func (q *Queue) sweepLoop(maxAge, every time.Duration) {
	defer q.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			if err := q.sweep(context.Background(), maxAge); err != nil {
				log.Errorf("[JobQueue] sweep: %v", err)
			}
		}
	}
}

func (q *Queue) sweep(ctx context.Context, maxAge time.Duration) error {
	ids, err := q.client.LRange(ctx, processingKey, 0, -1).Result()
	if err != nil {
		return err
	}
	now := q.now()
	for _, id := range ids {
		q.recoverStuck(ctx, id, now, maxAge)
	}
	return nil
}

func (q *Queue) recoverStuck(ctx context.Context, id string, now time.Time, maxAge time.Duration) {
	job, err := q.load(ctx, id)
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warnf("[JobQueue] Dropping unreadable job %s: %v", id, err)
		}
		q.release(ctx, id)
		return
	}
	if job.Status != JobStatusProcessing {
		q.release(ctx, id)
		return
	}
	age := now.Sub(job.runningSince())
	if age <= maxAge {
		return
	}

	log.Warnf("[JobQueue] Requeueing job %s after %s in processing", id, age.Round(time.Second))
	job.Status = JobStatusPending
	job.LastError = "requeued after stalling"
	job.UpdatedAt = now
	q.store(ctx, job)
	if _, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, processingKey, 1, id)
		pipe.RPush(ctx, pendingKey, id)
		return nil
	}); err != nil {
		log.Errorf("[JobQueue] Failed to requeue job %s: %v", id, err)
	}
}

func (q *Queue) load(ctx context.Context, id string) (*Job, error) {
	data, err := q.client.Get(ctx, jobKey(id)).Bytes()
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("corrupt job %s: %w", id, err)
	}
	return &job, nil
}

func (q *Queue) store(ctx context.Context, job *Job) {
	data, err := json.Marshal(job)
	if err == nil {
		err = q.client.Set(ctx, jobKey(job.ID), data, JobTTL).Err()
	}
	if err != nil {
		log.Errorf("[JobQueue] Failed to save job %s: %v", job.ID, err)
	}
}

func (q *Queue) release(ctx context.Context, id string) {
	if err := q.client.LRem(ctx, processingKey, 1, id).Err(); err != nil {
		log.Errorf("[JobQueue] Failed to release job %s: %v", id, err)
	}
}

func (q *Queue) count(ctx context.Context, status JobStatus) {
	if err := q.client.HIncrBy(ctx, statsKey, string(status), 1).Err(); err != nil {
		log.Warnf("[JobQueue] Failed to count %s job: %v", status, err)
	}
}

// GetJob returns redis.Nil once a job has finished or expired.
func (q *Queue) GetJob(ctx context.Context, id string) (*Job, error) {
	return q.load(ctx, id)
}

// GetJobStats returns the running totals per status.
func (q *Queue) GetJobStats(ctx context.Context) (map[JobStatus]int64, error) {
	raw, err := q.client.HGetAll(ctx, statsKey).Result()
	if err != nil {
		return nil, err
	}
	stats := make(map[JobStatus]int64, len(raw))
	for status, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		stats[JobStatus(status)] = n
	}
	return stats, nil
}

func (q *Queue) GetQueueSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, pendingKey).Result()
}

func (q *Queue) GetProcessingSize(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, processingKey).Result()
}
