// api/handlers/analytics_handlers.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cartpulse/api/analytics"
	"cartpulse/api/store"
	"cartpulse/api/utils"
)

type AnalyticsHandlers struct {
	Engine     *analytics.Engine
	EventStore *store.EventStore
}

func NewAnalyticsHandlers(engine *analytics.Engine, eventStore *store.EventStore) *AnalyticsHandlers {
	return &AnalyticsHandlers{Engine: engine, EventStore: eventStore}
}

// resolveRange reads startDate/endDate from the query string and resolves them
// against today. Writes the 400 response itself on invalid input.
func resolveRange(c *gin.Context) (analytics.DateRange, bool) {
	r, err := analytics.ResolveDateRange(c.Query("startDate"), c.Query("endDate"), time.Now().UTC())
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve date range"})
		}
		return analytics.DateRange{}, false
	}
	return r, true
}

// GetSessions returns the reconstructed, attributed session table for a
// window.
func (h *AnalyticsHandlers) GetSessions(c *gin.Context) {
	r, ok := resolveRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	sessions, err := h.Engine.SessionTable(ctx, r)
	if err != nil {
		log.Printf("Error building session table: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve session data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate": r.StartString(),
		"endDate":   r.EndString(),
		"sessions":  sessions,
	})
}

// GetPurchaseSessions returns the paginated purchase-session record set.
func (h *AnalyticsHandlers) GetPurchaseSessions(c *gin.Context) {
	r, ok := resolveRange(c)
	if !ok {
		return
	}

	req := analytics.DefaultPageRequest()
	var parsed bool
	if req.Limit, parsed = utils.IntQueryParam(c.Query("limit"), req.Limit); !parsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
		return
	}
	if req.Page, parsed = utils.IntQueryParam(c.Query("page"), req.Page); !parsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'page' parameter. Must be a positive integer."})
		return
	}
	if req.PageSize, parsed = utils.IntQueryParam(c.Query("pageSize"), req.PageSize); !parsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'pageSize' parameter. Must be a positive integer."})
		return
	}
	if req.TruncateStrings, parsed = utils.BoolQueryParam(c.Query("truncate"), req.TruncateStrings); !parsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'truncate' parameter. Must be a boolean."})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	records, err := h.Engine.PurchaseSessions(ctx, r, req)
	if err != nil {
		log.Printf("Error building purchase-session records: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve purchase data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"startDate": r.StartString(),
		"endDate":   r.EndString(),
		"rowCount":  len(records),
		"rows":      records,
	})
}

// GetEventParams returns the set of parameter keys observed for an event name,
// used for schema introspection.
func (h *AnalyticsHandlers) GetEventParams(c *gin.Context) {
	eventName := c.Query("eventName")
	if eventName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventName query parameter is required"})
		return
	}

	limit, parsed := utils.IntQueryParam(c.Query("limit"), 0)
	if !parsed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	keys, err := h.EventStore.DiscoverParamKeys(ctx, eventName, limit)
	if err != nil {
		log.Printf("Error discovering parameter keys for %q: %v", eventName, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to discover event parameters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"eventName": eventName,
		"paramKeys": keys,
	})
}
