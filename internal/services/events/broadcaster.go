package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/iron-and-snow/pkg/engine"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeGameStateUpdated EventType = "game.state_updated"
	EventTypeGameEnded        EventType = "game.ended"
)

// DefaultQueueSize bounds the updates waiting to be published.
const DefaultQueueSize = 256

// Event represents a generic event structure
type Event struct {
	Type   EventType              `json:"type"`
	GameID string                 `json:"game_id,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Channel returns the pub/sub channel carrying a game's events.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
	queue       chan Event
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
		queue:       make(chan Event, DefaultQueueSize),
	}
}

// StateUpdatedEvent builds the game.state_updated event for an engine update.
func StateUpdatedEvent(u engine.Update) Event {
	return Event{
		Type:   EventTypeGameStateUpdated,
		GameID: u.GameID.String(),
		Data: map[string]interface{}{
			"action":   u.Action,
			"phase":    u.State.Phase,
			"lines":    u.Lines,
			"busy":     u.State.Busy,
			"deferred": u.Deferred,
			"state":    u.State,
		},
	}
}

// PublishGameStateUpdated publishes a game.state_updated event
func (b *Broadcaster) PublishGameStateUpdated(ctx context.Context, u engine.Update) error {
	return b.publishToGame(ctx, u.GameID, StateUpdatedEvent(u))
}

// PublishGameEnded queues a game.ended event behind any pending updates for
// the game, so relays see every state update before the end. It blocks only
// while the queue is full and ctx is live.
func (b *Broadcaster) PublishGameEnded(ctx context.Context, gameID uuid.UUID) error {
	event := Event{
		Type:   EventTypeGameEnded,
		GameID: gameID.String(),
		Data: map[string]interface{}{
			"status": "ended",
		},
	}
	select {
	case b.queue <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to queue game ended event: %w", ctx.Err())
	}
}

// Subscriber returns an engine subscriber that queues each update for Run.
// It never blocks: when the queue is full the update is dropped and logged.
func (b *Broadcaster) Subscriber() func(engine.Update) {
	return func(u engine.Update) {
		select {
		case b.queue <- StateUpdatedEvent(u):
		default:
			b.logger.Warn("Event queue full, dropping update",
				"game_id", u.GameID.String(),
				"action", u.Action)
		}
	}
}

// Run publishes queued events in order until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-b.queue:
			gameID, err := uuid.Parse(event.GameID)
			if err != nil {
				b.logger.Error("Queued event has invalid game ID", "game_id", event.GameID)
				continue
			}
			// Errors are logged by publishToGame.
			_ = b.publishToGame(ctx, gameID, event)
		}
	}
}

// publishToGame publishes an event to the game-specific channel
func (b *Broadcaster) publishToGame(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}
