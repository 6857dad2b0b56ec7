package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"liveclass-backend/internal/models"
	"liveclass-backend/internal/repository"
	"liveclass-backend/internal/services"
)

const ExpansionQueue = "queue:session-expansion"

// Pool drains the expansion queue. Approving a class enqueues one job; a
// worker claims it with a redis lock, runs the session expander, and retries
// transient failures with backoff. Expansion itself is transactional and
// re-runnable, so a retried job never duplicates sessions.
type Pool struct {
	redis       *redis.Client
	expander    *services.SessionExpander
	jobRepo     *repository.JobRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, expander *services.SessionExpander, jobRepo *repository.JobRepo, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		expander:    expander,
		jobRepo:     jobRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, ExpansionQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to claim the job
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s (type: %s)", id, job.ID, job.Type)

		p.jobRepo.UpdateStatus(ctx, job.ID, models.JobProcessing)

		var processErr error
		switch job.Type {
		case models.JobSessionExpansion:
			processErr = p.processExpansion(ctx, &job)
		default:
			processErr = fmt.Errorf("unknown job type: %s", job.Type)
		}

		if processErr != nil {
			p.handleFailure(ctx, &job, processErr)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processExpansion(ctx context.Context, job *models.Job) error {
	result, err := p.expander.Expand(ctx, job.ClassID)
	if err != nil {
		return err
	}

	log.Printf("Worker: class %s expanded into %d sessions", job.ClassID, result.SessionsCreated)
	return nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, models.JobCompleted)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	job.RetryCount++
	errMsg := err.Error()

	if isPermanent(err) {
		log.Printf("Job %s failed permanently (not retryable): %s", job.ID, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, models.JobFailed)
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
		return
	}

	if job.RetryCount < 3 {
		// Re-queue with backoff
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, models.JobPending)
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		time.AfterFunc(backoff, func() {
			p.redis.LPush(context.Background(), ExpansionQueue, string(jobBytes))
		})
	} else {
		log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, models.JobFailed)
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)
	}
}

// isPermanent reports whether retrying cannot help: the class is gone, not
// approved, or its schedule definition is invalid.
func isPermanent(err error) bool {
	var notFound *services.NotFoundError
	var invalidState *services.InvalidStateError
	var validation *services.ValidationError
	return errors.As(err, &notFound) || errors.As(err, &invalidState) || errors.As(err, &validation)
}
