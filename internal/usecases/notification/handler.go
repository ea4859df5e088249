package notification

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/medeiros-dev/notification-dispatch/internal/domain"
	"github.com/medeiros-dev/notification-dispatch/internal/interfaces"
	"github.com/medeiros-dev/notification-dispatch/internal/observability/tracing"
	"github.com/medeiros-dev/notification-dispatch/pkg/logger"
)

type DispatchNotificationHandler struct {
	dispatcher interfaces.NotificationDispatcher
}

func NewDispatchNotificationHandler(dispatcher interfaces.NotificationDispatcher) *DispatchNotificationHandler {
	return &DispatchNotificationHandler{
		dispatcher: dispatcher,
	}
}

// RegisterRoutes mounts the send routes under rg.
func (h *DispatchNotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/email", h.HandleEmail)
	rg.POST("/sms", h.HandleSMS)
	rg.POST("/push", h.HandlePush)
	rg.POST("/multi", h.HandleMulti)
}

func (h *DispatchNotificationHandler) HandleEmail(c *gin.Context) {
	h.handleSingle(c, EmailChannel, h.dispatcher.SendEmail)
}

func (h *DispatchNotificationHandler) HandleSMS(c *gin.Context) {
	h.handleSingle(c, SMSChannel, h.dispatcher.SendSMS)
}

func (h *DispatchNotificationHandler) HandlePush(c *gin.Context) {
	h.handleSingle(c, PushChannel, h.dispatcher.SendPush)
}

// HandleMulti answers 200 even when a channel fails; the body carries the outcome.
func (h *DispatchNotificationHandler) HandleMulti(c *gin.Context) {
	ctx, span := tracing.Tracer.Start(c.Request.Context(), "DispatchNotificationHandler.HandleMulti")
	defer span.End()

	msg, ok := bindMessage(c)
	if !ok {
		return
	}

	results := h.dispatcher.SendMultiChannel(ctx, msg)
	output := MultiChannelResultDTO{
		Success: len(results) > 0,
		Results: make(map[string]bool, len(results)),
	}
	for i, name := range []string{EmailChannel, SMSChannel} {
		var sent bool
		if i < len(results) {
			sent = results[i]
		}
		output.Results[name] = sent
		output.Success = output.Success && sent
	}

	logger.L().Info("Multi-channel notification handled",
		zap.Bool("success", output.Success),
		zap.Bools("results", results),
		zap.String("traceID", logger.TraceIDFromContext(ctx)),
	)
	c.JSON(http.StatusOK, output)
}

func (h *DispatchNotificationHandler) handleSingle(c *gin.Context, name string, send func(context.Context, domain.Message) bool) {
	ctx, span := tracing.Tracer.Start(c.Request.Context(), "DispatchNotificationHandler.Handle")
	defer span.End()

	msg, ok := bindMessage(c)
	if !ok {
		return
	}

	sent := send(ctx, msg)
	logger.L().Info("Notification handled",
		zap.String("channel", name),
		zap.Bool("success", sent),
		zap.String("traceID", logger.TraceIDFromContext(ctx)),
	)
	c.JSON(http.StatusOK, SendResultDTO{Success: sent})
}

func bindMessage(c *gin.Context) (domain.Message, bool) {
	var input CreateNotificationDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return domain.Message{}, false
	}
	return input.ToMessage(), true
}
