package broadcast

import (
	"context"
	"fmt"
	"log"

	"github.com/V1per16/an0n-chat-render/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// BroadcastModule owns the WebSocket hub and relays committed chat events to
// every connected client. It consumes events rather than being called
// directly, so fan-out always happens after the storage mutation.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new broadcast module.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// GetHub exposes the hub so the API module can register connections on it.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}

// Start launches the hub's run loop.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[broadcast] Module started - WebSocket hub running")
	return nil
}

// Stop shuts down the hub and waits for its loop to drain.
func (m *BroadcastModule) Stop(ctx context.Context) error {
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Println("[broadcast] Module stopped")
	return nil
}

// RegisterEventConsumers subscribes to the chat module's committed events.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessagePostedV1, m.handleMessagePosted, m,
	); err != nil {
		return fmt.Errorf("failed to register MessagePosted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageEditedV1, m.handleMessageEdited, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageEdited consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageDeletedV1, m.handleMessageDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageDeleted consumer: %w", err)
	}

	return nil
}

func (m *BroadcastModule) handleMessagePosted(ctx context.Context, event events.MessagePostedEvent, msg *mono.Msg) error {
	payload := NewMessagePayload(event.Message)
	author := event.Author.Snapshot()
	payload.Author = &author

	m.hub.Broadcast(Frame{Type: FrameMessagePosted, Message: &payload})
	return nil
}

func (m *BroadcastModule) handleMessageEdited(ctx context.Context, event events.MessageEditedEvent, msg *mono.Msg) error {
	m.hub.Broadcast(Frame{
		Type:      FrameMessageEdited,
		MessageID: event.MessageID,
		NewText:   event.NewText,
	})
	return nil
}

func (m *BroadcastModule) handleMessageDeleted(ctx context.Context, event events.MessageDeletedEvent, msg *mono.Msg) error {
	m.hub.Broadcast(Frame{
		Type:      FrameMessageDeleted,
		MessageID: event.MessageID,
	})
	return nil
}

// Health reports hub status and the current connection count.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "Broadcast hub operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"present_users":     m.hub.Presence().Count(),
		},
	}
}
