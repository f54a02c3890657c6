package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/twilio"
	"github.com/go-chi/httplog/v3"
)

// VerifyTwilioSignature rejects POSTs whose X-Twilio-Signature does not
// match. Other methods pass through so the handler can answer them.
func VerifyTwilioSignature(verifier *twilio.WebhookVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			if !verifier.VerifyRequest(r) {
				httplog.SetAttrs(r.Context(), slog.Bool("signature_valid", false))
				response.Forbidden(w, "Invalid signature")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
