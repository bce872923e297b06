package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/usersettings"
)

// DefaultStream is the Redis stream registration events are appended to.
const DefaultStream = "usersettings:events"

// EventNewUser is the type field of a registration event.
const EventNewUser = "new_user"

// StreamClient is the part of redis.Cmdable the notifier uses.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// StreamNotifier appends registration events to a Redis stream for downstream consumers.
type StreamNotifier struct {
	client StreamClient
	stream string
	maxLen int64
}

// NewStreamNotifier returns a notifier writing to stream. maxLen > 0 caps the stream
// approximately.
func NewStreamNotifier(client StreamClient, stream string, maxLen int64) *StreamNotifier {
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamNotifier{client: client, stream: stream, maxLen: maxLen}
}

// NewRedisClient opens a go-redis client and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: failed to connect: %w", err)
	}
	return client, nil
}

func (n *StreamNotifier) NotifyNewUser(ctx context.Context, reg usersettings.Registration) error {
	at := reg.At
	if at.IsZero() {
		at = time.Now()
	}
	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"event_id":   uuid.NewString(),
			"type":       EventNewUser,
			"user_id":    strconv.FormatInt(reg.User.ID, 10),
			"username":   reg.User.Username,
			"first_name": reg.User.FirstName,
			"joined":     reg.JoinDate,
			"at":         at.UTC().Format(time.RFC3339),
		},
	}
	if n.maxLen > 0 {
		args.MaxLen = n.maxLen
		args.Approx = true
	}
	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis: failed to append to stream %s: %w", n.stream, err)
	}
	return nil
}
