package chat

import (
	"strings"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/validator"
)

// WhatsAppPrefix is prepended to sender numbers by the messaging transport.
const WhatsAppPrefix = "whatsapp:"

// InboundMessage is one message delivered by the webhook.
type InboundMessage struct {
	From string `form:"From"`
	Body string `form:"Body"`
}

func (m *InboundMessage) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(m.Phone()) {
		errs = append(errs, validator.ValidationError{
			Field:   "From",
			Message: "From is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Phone returns the sender number without the transport prefix.
func (m *InboundMessage) Phone() string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m.From), WhatsAppPrefix))
}

// Text returns the trimmed message body.
func (m *InboundMessage) Text() string {
	return strings.TrimSpace(m.Body)
}
