package chat

import "context"

// ChatService turns one inbound message into the reply text. A returned
// error means the reply could not be produced at all.
type ChatService interface {
	HandleMessage(ctx context.Context, msg InboundMessage) (string, error)
}
