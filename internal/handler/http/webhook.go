package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/domain/chat"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/logger"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
)

type WebhookHandler interface {
	Receive(w http.ResponseWriter, r *http.Request)
}

type webhookHandlerImpl struct {
	chatService chat.ChatService
	logger      *slog.Logger
}

func NewWebhookHandler(chatService chat.ChatService, logger *slog.Logger) WebhookHandler {
	return &webhookHandlerImpl{
		chatService: chatService,
		logger:      logger,
	}
}

// Receive handles one inbound WhatsApp message
// POST /whatsapp - Public (signature verified when configured)
func (h *webhookHandlerImpl) Receive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w)
		return
	}

	log := h.logger.With(slog.String("request_id", chiMiddleware.GetReqID(r.Context())))
	defer func() {
		if p := recover(); p != nil {
			log.Error("panic while handling message",
				slog.String("subsystem", "webhook"),
				slog.String("panic", fmt.Sprint(p)),
				slog.String("stack", string(debug.Stack())),
			)
			response.SystemError(w)
		}
	}()

	if err := r.ParseForm(); err != nil {
		log.Warn("invalid form body", slog.String("subsystem", "webhook"), slog.Any("error", err))
		response.BadRequest(w, "Invalid form body")
		return
	}

	msg := chat.InboundMessage{
		From: r.PostForm.Get("From"),
		Body: r.PostForm.Get("Body"),
	}
	if err := msg.Validate(); err != nil {
		log.Warn("invalid message", slog.String("subsystem", "webhook"), slog.Any("error", err))
		response.HandleError(w, err)
		return
	}

	// Bodies may carry passwords, so only their length is logged.
	log = log.With(slog.String("phone", msg.Phone()))
	httplog.SetAttrs(r.Context(), slog.String("phone", msg.Phone()))
	log.Info("message received", slog.String("subsystem", "webhook"), slog.Int("body_length", len(msg.Text())))

	reply, err := h.chatService.HandleMessage(logger.WithContext(r.Context(), log), msg)
	if err != nil {
		log.Error("handle message", slog.String("subsystem", "webhook"), slog.Any("error", err))
		response.HandleError(w, err)
		return
	}

	response.Message(w, reply)
}
