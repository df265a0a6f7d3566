package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dhwanit3747/learnersai/internal/models"
	"github.com/dhwanit3747/learnersai/internal/services"
)

// Pool drains the activity queue and applies records to the database.
// Completed sessions keep responding instantly; the bookkeeping lands
// here, a moment later.
type Pool struct {
	redis       *redis.Client
	recorder    *services.ActivityRecorder
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, recorder *services.ActivityRecorder, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		recorder:    recorder,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d activity worker goroutines", p.workerCount)
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
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.ActivityQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var rec models.ActivityRecord
		if err := json.Unmarshal([]byte(result[1]), &rec); err != nil {
			log.Printf("Worker %d: failed to parse activity record: %v", id, err)
			continue
		}

		award, err := p.recorder.Apply(ctx, &rec)
		if err != nil {
			// The session is long gone; nothing to surface. Log and move on.
			log.Printf("Worker %d: failed to apply activity for user %s: %v", id, rec.UserID, err)
			continue
		}

		p.recorder.PublishAward(ctx, rec.UserID, award)

		log.Printf("Worker %d: recorded %s (+%d points) for user %s", id, rec.ActivityType, rec.PointsEarned, rec.UserID)
	}
}
