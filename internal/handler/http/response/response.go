package response

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/twilio"
)

// SystemErrorReply is sent whenever a message could not be processed.
const SystemErrorReply = "⚠️ System error. Please try again later."

// fallbackTwiML is written when the reply document itself cannot be built.
const fallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response><Message>` + SystemErrorReply + `</Message></Response>`

func writeTwiML(w http.ResponseWriter, statusCode int, text string) {
	doc, err := twilio.MessagingResponse(text)
	if err != nil {
		slog.Error("build twiml reply", "error", err)
		statusCode = http.StatusInternalServerError
		doc = fallbackTwiML
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(doc))
}

// Success responses
func Message(w http.ResponseWriter, text string) {
	writeTwiML(w, http.StatusOK, text)
}

// Error responses
func SystemError(w http.ResponseWriter) {
	writeTwiML(w, http.StatusInternalServerError, SystemErrorReply)
}

// Plain writes a non-TwiML rejection.
func Plain(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(text))
}

func MethodNotAllowed(w http.ResponseWriter) {
	Plain(w, http.StatusMethodNotAllowed, "Invalid method")
}

func Forbidden(w http.ResponseWriter, message string) {
	Plain(w, http.StatusForbidden, message)
}

func BadRequest(w http.ResponseWriter, message string) {
	Plain(w, http.StatusBadRequest, message)
}
