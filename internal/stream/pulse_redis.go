package stream

import (
	"context"
	"strings"
	"time"

	"pulse_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ConsumerGroup is the default consumer group for job streams.
const ConsumerGroup = "pulse-workers"

// ReadOptions controls XREADGROUP batching and pending-entry recovery.
type ReadOptions struct {
	Count int64
	Block time.Duration

	ClaimInterval time.Duration // how often pending entries are checked
	MinIdle       time.Duration // idle time before an entry is claimed
	MaxDeliveries int64         // deliveries before an entry is dropped
}

// DefaultReadOptions returns the read settings used by workers.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Count:         10,
		Block:         5 * time.Second,
		ClaimInterval: 30 * time.Second,
		MinIdle:       time.Minute,
		MaxDeliveries: 5,
	}
}

type RedisStream struct {
	client *redis.Client
	group  string
	opts   ReadOptions
}

func NewRedisStream(client *redis.Client, group string, opts ReadOptions) *RedisStream {
	if opts.Count <= 0 {
		opts.Count = 10
	}
	def := DefaultReadOptions()
	if opts.Block <= 0 {
		opts.Block = def.Block
	}
	if opts.ClaimInterval <= 0 {
		opts.ClaimInterval = def.ClaimInterval
	}
	if opts.MinIdle <= 0 {
		opts.MinIdle = def.MinIdle
	}
	if opts.MaxDeliveries <= 0 {
		opts.MaxDeliveries = def.MaxDeliveries
	}
	return &RedisStream{
		client: client,
		group:  group,
		opts:   opts,
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return err
	}
	return nil
}

func isBusyGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}

func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": jsonData},
	}).Result()
}

// Consume reads the stream until ctx is done. Messages are acknowledged only when handler succeeds.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    s.opts.Count,
			Block:    s.opts.Block,
		}).Result()

		if err != nil {
			if err != redis.Nil && ctx.Err() == nil {
				logger.WithError(err).Warn("[RedisStream] read error on %s", stream)
				time.Sleep(time.Second)
			}
			continue
		}

		for _, st := range streams {
			s.ackAll(ctx, st.Stream, dispatch(st.Messages, handler))
		}
	}
}

// dispatch runs handler over msgs and returns the IDs to acknowledge.
// Entries whose handler failed stay pending for ReclaimPending.
func dispatch(msgs []redis.XMessage, handler func(id string, data []byte) error) []string {
	ack := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		data, ok := messageData(msg)
		if !ok {
			logger.Warn("[RedisStream] message %s has no data field, acking", msg.ID)
			ack = append(ack, msg.ID)
			continue
		}

		if err := handler(msg.ID, data); err != nil {
			logger.WithError(err).Warn("[RedisStream] handler error for %s, left pending", msg.ID)
			continue
		}
		ack = append(ack, msg.ID)
	}
	return ack
}

func (s *RedisStream) ackAll(ctx context.Context, stream string, ids []string) {
	for _, id := range ids {
		if err := s.Ack(ctx, stream, id); err != nil {
			logger.WithError(err).Warn("[RedisStream] ack failed for %s", id)
		}
	}
}

// ClaimLoop runs ReclaimPending once immediately and then every ClaimInterval until ctx is done.
func (s *RedisStream) ClaimLoop(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	ticker := time.NewTicker(s.opts.ClaimInterval)
	defer ticker.Stop()

	for {
		s.ReclaimPending(ctx, stream, consumer, handler)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ReclaimPending claims entries idle for at least MinIdle and hands them to handler again.
// Entries delivered MaxDeliveries times are acknowledged and dropped.
func (s *RedisStream) ReclaimPending(ctx context.Context, stream, consumer string, handler func(id string, data []byte) error) {
	if n, err := s.Pending(ctx, stream); err != nil || n == 0 {
		if err != nil && err != redis.Nil && ctx.Err() == nil {
			logger.WithError(err).Warn("[RedisStream] pending check failed on %s", stream)
		}
		return
	}

	pending, err := s.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: stream,
		Group:  s.group,
		Idle:   s.opts.MinIdle,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			logger.WithError(err).Warn("[RedisStream] pending list failed on %s", stream)
		}
		return
	}

	claim, drop := splitPending(pending, s.opts.MinIdle, s.opts.MaxDeliveries)
	for _, id := range drop {
		logger.WithField("stream", stream).Error("[RedisStream] message %s exceeded %d deliveries, dropping", id, s.opts.MaxDeliveries)
	}
	s.ackAll(ctx, stream, drop)
	if len(claim) == 0 {
		return
	}

	claimed, err := s.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   stream,
		Group:    s.group,
		Consumer: consumer,
		MinIdle:  s.opts.MinIdle,
		Messages: claim,
	}).Result()
	if err != nil {
		logger.WithError(err).Warn("[RedisStream] claim failed on %s", stream)
		return
	}

	logger.WithField("stream", stream).Info("[RedisStream] reclaimed %d pending messages", len(claimed))
	s.ackAll(ctx, stream, dispatch(claimed, handler))
}

// splitPending returns the entries to claim again and the entries to drop.
func splitPending(pending []redis.XPendingExt, minIdle time.Duration, maxDeliveries int64) (claim, drop []string) {
	for _, p := range pending {
		if p.Idle < minIdle {
			continue
		}
		if p.RetryCount >= maxDeliveries {
			drop = append(drop, p.ID)
			continue
		}
		claim = append(claim, p.ID)
	}
	return claim, drop
}

func messageData(msg redis.XMessage) ([]byte, bool) {
	switch v := msg.Values["data"].(type) {
	case string:
		return []byte(v), true
	case []byte:
		return v, true
	}
	return nil, false
}

func (s *RedisStream) Ack(ctx context.Context, stream, id string) error {
	return s.client.XAck(ctx, stream, s.group, id).Err()
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}
