package distributed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
)

// TriggerChannel carries on-demand cycle requests to running workers.
const TriggerChannel = "exabanque:trigger"

// TriggerRequest asks workers to run a cycle now. ConnectorID 0 means all.
type TriggerRequest struct {
	ConnectorID uint   `json:"connector_id"`
	Source      string `json:"source"`
	Timestamp   string `json:"timestamp"`
}

// TriggerListener receives decoded requests.
type TriggerListener func(req TriggerRequest)

// TriggerBus is a Redis pub/sub channel for cycle requests. With a nil
// client it is inert.
type TriggerBus struct {
	client   *redis.Client
	channel  string
	listener TriggerListener
	ctx      context.Context
	cancelFn context.CancelFunc
}

func NewTriggerBus(client *redis.Client, listener TriggerListener) *TriggerBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &TriggerBus{
		client:   client,
		channel:  TriggerChannel,
		listener: listener,
		ctx:      ctx,
		cancelFn: cancel,
	}
}

// Start blocks until Stop, dispatching requests to the listener.
func (b *TriggerBus) Start() {
	if b.client == nil {
		logger.Infof("[Trigger] Redis not available, remote triggers disabled")
		return
	}

	pubsub := b.client.Subscribe(b.ctx, b.channel)
	defer pubsub.Close()

	logger.Infof("[Trigger] Listening on channel: %s", b.channel)

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.handleMessage(msg)
		case <-b.ctx.Done():
			logger.Infof("[Trigger] Stopped listening on channel: %s", b.channel)
			return
		}
	}
}

func (b *TriggerBus) Stop() {
	b.cancelFn()
}

// Publish sends a request. Without Redis it is a no-op.
func (b *TriggerBus) Publish(ctx context.Context, connectorID uint, source string) error {
	if b.client == nil {
		return nil
	}

	payload, err := json.Marshal(TriggerRequest{
		ConnectorID: connectorID,
		Source:      source,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *TriggerBus) handleMessage(msg *redis.Message) {
	var req TriggerRequest
	if err := json.Unmarshal([]byte(msg.Payload), &req); err != nil {
		logger.Warnf("[Trigger] Failed to parse message: %v", err)
		return
	}

	logger.Infof("[Trigger] Received cycle request from %s (connector %d)", req.Source, req.ConnectorID)
	if b.listener != nil {
		b.listener(req)
	}
}
