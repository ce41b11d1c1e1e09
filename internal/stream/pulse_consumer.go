package stream

import (
	"context"
	"fmt"

	"pulse_server/adapter/in/worker"
	"pulse_server/core/port/out"
	"pulse_server/pkg/logger"

	"github.com/goccy/go-json"
)

// Submitter accepts decoded jobs for execution.
type Submitter interface {
	Submit(msg *worker.Message) error
}

type Consumer struct {
	stream *RedisStream
	pool   Submitter
	name   string
}

func NewConsumer(stream *RedisStream, pool Submitter, name string) *Consumer {
	return &Consumer{
		stream: stream,
		pool:   pool,
		name:   name,
	}
}

// Start creates the consumer group and reads the job stream in the background.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.stream.CreateGroup(ctx, out.StreamSentimentJobs); err != nil {
		return fmt.Errorf("failed to create group for %s: %w", out.StreamSentimentJobs, err)
	}

	go c.stream.Consume(ctx, out.StreamSentimentJobs, c.name, c.handle)
	go c.stream.ClaimLoop(ctx, out.StreamSentimentJobs, c.name, c.handle)
	logger.Info("[Consumer] %s reading %s", c.name, out.StreamSentimentJobs)
	return nil
}

func (c *Consumer) handle(id string, data []byte) error {
	msg, err := decodeJob(data)
	if err != nil {
		// Undecodable entries can never succeed; ack them.
		logger.WithError(err).Error("[Consumer] dropping malformed job %s", id)
		return nil
	}
	return c.pool.Submit(msg)
}

func decodeJob(data []byte) (*worker.Message, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	if job.Type == "" {
		return nil, fmt.Errorf("job %s has no type", job.ID)
	}

	return &worker.Message{
		ID:        job.ID,
		Type:      job.Type,
		Payload:   job.Payload,
		CreatedAt: job.CreatedAt,
	}, nil
}
