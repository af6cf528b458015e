// Package events publishes pipeline milestones to Redis pub/sub channels so
// downstream consumers (alerting, digests) can react without polling.
// Publishing is strictly best-effort: a failed publish is logged and
// dropped, never surfaced to the crawl.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/domain"
)

const (
	ChannelCrawlCompleted   = "rivalscope:crawl_completed"
	ChannelHighImpactChange = "rivalscope:high_impact_change"
)

// CrawlCompletedEvent is the payload published when a job terminates
type CrawlCompletedEvent struct {
	JobID        string           `json:"job_id"`
	CompetitorID string           `json:"competitor_id"`
	Status       domain.JobStatus `json:"status"`
	PagesCrawled int              `json:"pages_crawled"`
	ChangesFound int              `json:"changes_found"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

// HighImpactChangeEvent is published for every strategic-impact change
type HighImpactChangeEvent struct {
	ChangeID   string            `json:"change_id"`
	PageID     string            `json:"page_id"`
	ChangeType domain.ChangeType `json:"change_type"`
	Category   domain.Category   `json:"category"`
	Summary    string            `json:"summary"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// RedisPublisher publishes events over Redis pub/sub
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPublisher connects to Redis and verifies the connection
func NewRedisPublisher(cfg config.RedisConfig, logger *zap.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &RedisPublisher{client: client, logger: logger}, nil
}

// Close releases the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// CrawlCompleted publishes the terminal state of a crawl job
func (p *RedisPublisher) CrawlCompleted(ctx context.Context, job *domain.CrawlJob) {
	p.publish(ctx, ChannelCrawlCompleted, CrawlCompletedEvent{
		JobID:        job.ID.String(),
		CompetitorID: job.CompetitorID.String(),
		Status:       job.Status,
		PagesCrawled: job.PagesCrawled,
		ChangesFound: job.ChangesFound,
		OccurredAt:   time.Now().UTC(),
	})
}

// HighImpactChange publishes a strategic-impact change
func (p *RedisPublisher) HighImpactChange(ctx context.Context, change *domain.Change) {
	p.publish(ctx, ChannelHighImpactChange, HighImpactChangeEvent{
		ChangeID:   change.ID.String(),
		PageID:     change.PageID.String(),
		ChangeType: change.Type,
		Category:   change.Category,
		Summary:    change.Summary,
		OccurredAt: time.Now().UTC(),
	})
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("marshaling event", zap.String("channel", channel), zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		p.logger.Warn("publishing event failed",
			zap.String("channel", channel), zap.Error(err))
	}
}

// NopPublisher drops every event. Used when Redis is unavailable; the
// pipeline runs unchanged without eventing.
type NopPublisher struct{}

func (NopPublisher) CrawlCompleted(context.Context, *domain.CrawlJob) {}

func (NopPublisher) HighImpactChange(context.Context, *domain.Change) {}
