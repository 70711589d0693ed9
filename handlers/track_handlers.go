// api/handlers/track_handlers.go
package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cartpulse/api/models"
	"cartpulse/api/store"
)

type TrackHandlers struct {
	EventStore *store.EventStore
}

func NewTrackHandlers(s *store.EventStore) *TrackHandlers {
	return &TrackHandlers{EventStore: s}
}

// TrackEvents ingests a batch of clickstream events into the warehouse. The
// frontend sends an array of event objects; event IDs and missing timestamps
// are filled server-side.
func (h *TrackHandlers) TrackEvents(c *gin.Context) {
	var incoming []models.Event
	if err := c.ShouldBindJSON(&incoming); err != nil {
		log.Printf("Error binding incoming event JSON: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}

	now := time.Now().UTC()
	events := make([]models.Event, 0, len(incoming))
	for _, event := range incoming {
		event.EventID = uuid.New().String()
		if event.Timestamp.IsZero() {
			event.Timestamp = now
		}
		if event.Params == nil {
			event.Params = models.Params{}
		}
		events = append(events, event)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.EventStore.InsertEvents(ctx, events); err != nil {
		log.Printf("Error inserting clickstream events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record events"})
		return
	}

	c.Status(http.StatusOK)
}
