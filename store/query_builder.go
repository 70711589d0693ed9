// api/store/query_builder.go
package store

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// eventColumns is the column list every event query selects, in scan order.
const eventColumns = "event_id, event_name, visitor_id, session_id, timestamp, params, " +
	"device_category, device_os, browser, geo_country, geo_region, geo_city"

// validTableName restricts table references to plain or database-qualified
// identifiers, keeping the caller-supplied table out of injection territory.
var validTableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// EventQuery is a structured range query against the events table: a table
// reference plus named bound parameters, instead of string-templated SQL.
// Both date bounds are independently optional; a nil bound means unbounded on
// that side. Offset only applies together with Limit.
type EventQuery struct {
	Table     string
	EventName string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// SQL renders the query and its bound arguments. Dates filter inclusively on
// the event's calendar date.
func (q EventQuery) SQL() (string, []interface{}, error) {
	if !validTableName.MatchString(q.Table) {
		return "", nil, fmt.Errorf("invalid events table name %q", q.Table)
	}

	var clauses []string
	var args []interface{}

	if q.EventName != "" {
		clauses = append(clauses, "event_name = ?")
		args = append(args, q.EventName)
	}
	if q.StartDate != nil {
		clauses = append(clauses, "toDate(timestamp) >= ?")
		args = append(args, q.StartDate.Format("2006-01-02"))
	}
	if q.EndDate != nil {
		clauses = append(clauses, "toDate(timestamp) <= ?")
		args = append(args, q.EndDate.Format("2006-01-02"))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", eventColumns, q.Table)
	if len(clauses) > 0 {
		sb.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}
	sb.WriteString(" ORDER BY timestamp ASC, event_id ASC")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, uint64(q.Limit))
		if q.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			args = append(args, uint64(q.Offset))
		}
	}
	return sb.String(), args, nil
}

// discoverySQL renders the bounded params-column read used for parameter-key
// discovery. Key extraction happens in memory over the fetched rows, keeping
// the query portable across warehouse backends.
func discoverySQL(table, eventName string, limit int) (string, []interface{}, error) {
	if !validTableName.MatchString(table) {
		return "", nil, fmt.Errorf("invalid events table name %q", table)
	}
	query := fmt.Sprintf("SELECT params FROM %s WHERE event_name = ? LIMIT ?", table)
	return query, []interface{}{eventName, uint64(limit)}, nil
}
