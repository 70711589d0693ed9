// api/store/event_store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"cartpulse/api/analytics"
	"cartpulse/api/database"
	"cartpulse/api/models"
)

// DefaultEventsTable is used when EVENTS_TABLE is not configured.
const DefaultEventsTable = "clickstream_events"

// defaultDiscoveryRowLimit bounds the params-column read backing key discovery.
const defaultDiscoveryRowLimit = 10000

// EventStore reads and writes raw clickstream events in the warehouse.
type EventStore struct {
	DB    *database.ClickHouseClient
	Table string
}

func NewEventStore(chClient *database.ClickHouseClient, table string) *EventStore {
	if table == "" {
		table = DefaultEventsTable
	}
	return &EventStore{DB: chClient, Table: table}
}

// InsertEvents batch-inserts a set of events. Params are serialized to a JSON
// object column.
func (s *EventStore) InsertEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			event_id, event_name, visitor_id, session_id, timestamp, params,
			device_category, device_os, browser, geo_country, geo_region, geo_city
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.Table))
	if err != nil {
		return fmt.Errorf("failed to prepare event batch insert: %w", err)
	}

	for _, event := range events {
		rawParams, err := json.Marshal(event.Params)
		if err != nil {
			log.Printf("Error serializing params for event %s: %v", event.EventID, err)
			continue
		}
		err = batch.Append(
			event.EventID,
			event.Name,
			event.VisitorID,
			event.SessionID,
			event.Timestamp,
			string(rawParams),
			event.DeviceCategory,
			event.DeviceOS,
			event.Browser,
			event.GeoCountry,
			event.GeoRegion,
			event.GeoCity,
		)
		if err != nil {
			log.Printf("Error appending event to batch (EventID: %s): %v", event.EventID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send event batch: %w", err)
	}

	log.Printf("Inserted %d clickstream events into %s.", len(events), s.Table)
	return nil
}

// QueryEvents runs a structured range query and scans the result rows into
// typed events. Parameter maps are parsed from the JSON column per row.
func (s *EventStore) QueryEvents(ctx context.Context, q EventQuery) ([]models.Event, error) {
	if q.Table == "" {
		q.Table = s.Table
	}
	query, args, err := q.SQL()
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			ev        models.Event
			rawParams string
		)
		if err := rows.Scan(
			&ev.EventID,
			&ev.Name,
			&ev.VisitorID,
			&ev.SessionID,
			&ev.Timestamp,
			&rawParams,
			&ev.DeviceCategory,
			&ev.DeviceOS,
			&ev.Browser,
			&ev.GeoCountry,
			&ev.GeoRegion,
			&ev.GeoCity,
		); err != nil {
			log.Printf("Error scanning event row: %v", err)
			continue
		}
		params, err := models.ParseParams([]byte(rawParams))
		if err != nil {
			log.Printf("Error parsing params for event %s: %v", ev.EventID, err)
			params = models.Params{}
		}
		ev.Params = params
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event query: %w", err)
	}
	return events, nil
}

// Events adapts QueryEvents to the analytics engine's source contract.
func (s *EventStore) Events(ctx context.Context, r analytics.DateRange, eventName string, limit, offset int) ([]models.Event, error) {
	start, end := r.Start, r.End
	return s.QueryEvents(ctx, EventQuery{
		Table:     s.Table,
		EventName: eventName,
		StartDate: &start,
		EndDate:   &end,
		Limit:     limit,
		Offset:    offset,
	})
}

// DiscoverParamKeys returns the sorted set of parameter keys observed for an
// event name, bounded by rowLimit rows. The keys are extracted in memory from
// the fetched params column rather than with correlated subqueries, so the
// same store works against any warehouse dialect.
func (s *EventStore) DiscoverParamKeys(ctx context.Context, eventName string, rowLimit int) ([]string, error) {
	if eventName == "" {
		return nil, fmt.Errorf("eventName is required for parameter discovery")
	}
	if rowLimit <= 0 {
		rowLimit = defaultDiscoveryRowLimit
	}

	query, args, err := discoverySQL(s.Table, eventName, rowLimit)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query params for discovery: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var rawParams string
		if err := rows.Scan(&rawParams); err != nil {
			log.Printf("Error scanning params row during discovery: %v", err)
			continue
		}
		params, err := models.ParseParams([]byte(rawParams))
		if err != nil {
			continue
		}
		for key := range params {
			seen[key] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during parameter discovery: %w", err)
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
