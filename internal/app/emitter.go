package app

import (
	"context"

	redisclient "github.com/yungbote/courtbridge-backend/internal/clients/redis"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/sse"
)

// busEmitter routes finalized events through the redis bus when one is
// configured; the forwarder delivers them back into every instance's local
// hub, this one included. Without a bus it broadcasts locally.
type busEmitter struct {
	hub *sse.SSEHub
	bus redisclient.SSEBus
	log *logger.Logger
}

func newBusEmitter(hub *sse.SSEHub, bus redisclient.SSEBus, log *logger.Logger) *busEmitter {
	return &busEmitter{hub: hub, bus: bus, log: log.With("component", "BusEmitter")}
}

func (e *busEmitter) Emit(ctx context.Context, msg sse.SSEMessage) {
	if e.bus != nil {
		err := e.bus.Publish(ctx, msg)
		if err == nil {
			return
		}
		e.log.Warn("Bus publish failed; falling back to local broadcast", "channel", msg.Channel, "error", err)
	}
	e.hub.Broadcast(msg)
}
