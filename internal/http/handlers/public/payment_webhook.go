package public

import (
	"errors"
	"io"
	"net/http"

	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 1 << 20

// HandleStripeWebhook 处理 Stripe webhook，直接返回 HTTP 状态码供 Stripe 判定重试
func (h *Handler) HandleStripeWebhook(c *gin.Context) {
	log := handlershared.RequestLog(c)
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Warnw("stripe_webhook_read_body_failed", "error", err)
		c.String(http.StatusBadRequest, "invalid body")
		return
	}

	result, err := h.OrderMaterializer.HandleStripeWebhook(c.Request.Context(), webhookHeaders(c.Request.Header), body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWebhookSignatureInvalid):
			log.Warnw("stripe_webhook_signature_invalid", "error", err)
			c.String(http.StatusBadRequest, "invalid signature")
		case errors.Is(err, service.ErrValidation):
			log.Warnw("stripe_webhook_payload_invalid", "error", err)
			c.String(http.StatusBadRequest, "invalid payload")
		default:
			log.Errorw("stripe_webhook_process_failed", "error", err)
			c.String(http.StatusInternalServerError, "processing failed")
		}
		return
	}

	payload := gin.H{"received": true, "event_type": result.EventType}
	if result.Ignored {
		payload["ignored"] = true
	}
	if result.Order != nil {
		payload["order_no"] = result.Order.OrderNo
		payload["created"] = result.Created
	}
	c.JSON(http.StatusOK, payload)
}

func webhookHeaders(header http.Header) map[string]string {
	headers := make(map[string]string, len(header))
	for key, values := range header {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	return headers
}
