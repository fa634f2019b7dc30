package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/playperu/treasurehunt/internal/hunt"
)

// feedTopic receives every event regardless of team.
const feedTopic = "*"

// Event is the payload published to team and feed subscribers.
type Event struct {
	Type     string `json:"type"`
	TeamID   string `json:"teamId"`
	Location string `json:"location,omitempty"`
	Result   string `json:"result,omitempty"`
	Note     string `json:"note,omitempty"`
	Rank     int    `json:"rank,omitempty"`
	At       string `json:"at"`
}

// Broker is an in-process pub/sub for live events, keyed by team ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the
// given team, or for all teams when topic is feedTopic.
func (b *Broker) Subscribe(topic string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan []byte]struct{})
	}
	b.subs[topic][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[topic], ch)
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
	b.mu.Unlock()
}

// Publish sends an event to the team's subscribers and to the feed.
func (b *Broker) Publish(event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for _, topic := range []string{event.TeamID, feedTopic} {
		for ch := range b.subs[topic] {
			select {
			case ch <- data:
			default:
				// Drop if subscriber is slow.
			}
		}
	}
	b.mu.RUnlock()
}

// Observe adapts the broker and leaderboard cache to engine notices.
// A nil cache is skipped.
func Observe(b *Broker, cache LeaderboardCache) hunt.Observer {
	return func(ctx context.Context, n hunt.Notice) {
		b.Publish(Event{
			Type:     n.Kind,
			TeamID:   n.TeamID,
			Location: n.Location,
			Result:   string(n.Result),
			Note:     n.Note,
			Rank:     n.Rank,
			At:       n.At.UTC().Format(time.RFC3339),
		})
		if cache != nil {
			_ = cache.Invalidate(context.WithoutCancel(ctx))
		}
	}
}
