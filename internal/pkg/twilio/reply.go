package twilio

import (
	"fmt"

	"github.com/twilio/twilio-go/twiml"
)

// MessagingResponse wraps text in a <Response><Message> TwiML document.
func MessagingResponse(text string) (string, error) {
	doc, err := twiml.Messages([]twiml.Element{
		&twiml.MessagingMessage{Body: text},
	})
	if err != nil {
		return "", fmt.Errorf("build twiml: %w", err)
	}
	return doc, nil
}
