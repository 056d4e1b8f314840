package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"accountsvc/internal/services"
)

// EventsHandler serves the security event log to auditors.
type EventsHandler struct {
	audit services.AuditServicer
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(audit services.AuditServicer) *EventsHandler {
	return &EventsHandler{audit: audit}
}

// ListEvents returns all security events in creation order.
func (h *EventsHandler) ListEvents(c *gin.Context) {
	events, err := h.audit.Events()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}
