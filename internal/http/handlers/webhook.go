package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/http/response"
	"github.com/quildacademy/quild-backend/internal/services"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	webhooks services.WebhookService
}

func NewWebhookHandler(webhooks services.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// POST /api/webhooks/clerk
func (h *WebhookHandler) IdentityEvent(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.RespondErr(c, domainagg.Validation("http.webhook", "could not read body"))
		return
	}
	if _, err := h.webhooks.HandleIdentityEvent(c.Request.Context(), body, c.Request.Header); err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Webhook received"})
}
