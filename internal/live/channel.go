// Package live keeps the latest chart data in memory and pushes updates to
// websocket subscribers as new stats snapshots arrive.
package live

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/report"
	"github.com/d3viant0ne/webpack-bundle-analyzer/internal/stats"
)

// ErrNoCompute indicates Recompute was called on a channel built without a
// compute function.
var ErrNoCompute = errors.New("channel has no compute function")

// EventChartDataUpdated is the event name carried by every broadcast.
const EventChartDataUpdated = "chartDataUpdated"

// Message is the broadcast envelope sent to subscribers.
type Message struct {
	Event string              `json:"event"`
	Data  []*report.ChartItem `json:"data"`
}

// SendFunc delivers one message to a single subscriber.
type SendFunc func(msg Message) error

// ComputeFunc projects a stats snapshot into chart data.
type ComputeFunc func(ctx context.Context, st *stats.Stats) ([]*report.ChartItem, error)

// subscriberQueueSize bounds the updates buffered per subscriber. A peer that
// falls further behind starts losing intermediate updates.
const subscriberQueueSize = 8

// subscriber pairs a bounded update queue with its drainer's stop signal.
// Each subscriber's queue is drained by its own goroutine, so one slow peer
// cannot delay the producer or any other subscriber.
type subscriber struct {
	queue chan Message
	done  chan struct{}
}

// Channel holds the current chart data and a set of subscribers. All methods
// are safe for concurrent use.
type Channel struct {
	logger  *slog.Logger
	compute ComputeFunc

	mu          sync.RWMutex
	current     []*report.ChartItem
	subscribers map[string]*subscriber
}

// NewChannel creates an empty channel. The compute function runs the full
// analysis pipeline on Recompute; it may be nil when updates arrive only
// through Publish.
func NewChannel(logger *slog.Logger, compute ComputeFunc) *Channel {
	if logger == nil {
		logger = slog.Default()
	}

	return &Channel{
		logger:      logger,
		compute:     compute,
		subscribers: make(map[string]*subscriber),
	}
}

// Recompute runs the pipeline against a fresh stats snapshot and publishes
// the result. An empty result is discarded: the previous state is kept and
// nothing is broadcast. Returns whether the state was replaced.
func (c *Channel) Recompute(ctx context.Context, st *stats.Stats) (bool, error) {
	if c.compute == nil {
		return false, ErrNoCompute
	}

	items, err := c.compute(ctx, st)
	if err != nil {
		return false, err
	}

	return c.Publish(items), nil
}

// Current returns the latest published chart data. Callers must not mutate
// the returned slice.
func (c *Channel) Current() []*report.ChartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.current
}

// Subscribe registers a send function under id and returns its unsubscribe
// function. Subscribing twice with the same id replaces the earlier entry.
// Delivery runs on a goroutine owned by the subscription; the send function
// is never called after unsubscribe returns and a pending delivery finishes.
func (c *Channel) Subscribe(id string, send SendFunc) func() {
	sub := &subscriber{
		queue: make(chan Message, subscriberQueueSize),
		done:  make(chan struct{}),
	}

	c.mu.Lock()
	if prev, ok := c.subscribers[id]; ok {
		close(prev.done)
	}
	c.subscribers[id] = sub
	c.mu.Unlock()

	go c.deliver(id, sub, send)

	var once sync.Once

	return func() {
		once.Do(func() {
			c.mu.Lock()
			if c.subscribers[id] == sub {
				delete(c.subscribers, id)
			}
			c.mu.Unlock()

			close(sub.done)
		})
	}
}

// deliver drains one subscriber's queue until its done channel closes.
func (c *Channel) deliver(id string, sub *subscriber, send SendFunc) {
	for {
		select {
		case <-sub.done:
			return
		case msg := <-sub.queue:
			if err := send(msg); err != nil {
				c.logger.Warn("subscriber send failed", "subscriber", id, "error", err)
			}
		}
	}
}

// SubscriberCount reports how many subscribers are registered.
func (c *Channel) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.subscribers)
}

// Publish replaces the current chart data and broadcasts it. An empty update
// is discarded: the previous data stays current and nothing is sent, so a
// broken stats snapshot cannot blank an open report. Returns whether the
// update was applied.
func (c *Channel) Publish(items []*report.ChartItem) bool {
	if len(items) == 0 {
		c.logger.Warn("empty chart data discarded, keeping previous state")

		return false
	}

	c.mu.Lock()
	c.current = items

	subs := make(map[string]*subscriber, len(c.subscribers))
	for id, sub := range c.subscribers {
		subs[id] = sub
	}
	c.mu.Unlock()

	msg := Message{Event: EventChartDataUpdated, Data: items}

	// Enqueue only, never send inline. A slow or unresponsive subscriber
	// must not delay the producer or the remaining subscribers; on a full
	// queue the update is dropped for that subscriber.
	for id, sub := range subs {
		select {
		case sub.queue <- msg:
		default:
			c.logger.Warn("subscriber queue full, update dropped", "subscriber", id)
		}
	}

	return true
}
