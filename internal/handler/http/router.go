package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/twilio"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

// NewRouter wires the webhook. A nil verifier disables signature checks.
func NewRouter(logger *slog.Logger, webhookHandler WebhookHandler, verifier *twilio.WebhookVerifier) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Group(func(r chi.Router) {
		if verifier != nil {
			r.Use(middleware.VerifyTwilioSignature(verifier))
		}
		r.HandleFunc("/whatsapp", webhookHandler.Receive)
	})

	return r
}
