// api/analytics/pagination.go
package analytics

import (
	"fmt"
	"unicode/utf8"
)

// Pagination defaults and hard ceilings.
const (
	DefaultPageLimit = 500
	MaxPageLimit     = 5000

	truncateAt     = 200
	truncateKeep   = 197
	truncateMarker = "..."
)

// PageRequest shapes one paginated response: Limit caps rows across all
// accumulated pages, Page is 1-based, PageSize is rows per fetch.
type PageRequest struct {
	Limit           int
	Page            int
	PageSize        int
	TruncateStrings bool
}

// DefaultPageRequest returns the request defaults: 500-row limit and page
// size, first page, truncation on.
func DefaultPageRequest() PageRequest {
	return PageRequest{
		Limit:           DefaultPageLimit,
		Page:            1,
		PageSize:        DefaultPageLimit,
		TruncateStrings: true,
	}
}

// Normalize applies defaults and ceilings, returning the effective request.
func (r PageRequest) Normalize() PageRequest {
	if r.Limit <= 0 {
		r.Limit = DefaultPageLimit
	}
	if r.Limit > MaxPageLimit {
		r.Limit = MaxPageLimit
	}
	if r.PageSize <= 0 {
		r.PageSize = DefaultPageLimit
	}
	if r.PageSize > MaxPageLimit {
		r.PageSize = MaxPageLimit
	}
	if r.Page <= 0 {
		r.Page = 1
	}
	return r
}

// Offset is the row offset of the first fetched page.
func (r PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// AccumulatePages fetches pages of PageSize sequentially starting at Page,
// appending rows until the accumulated count reaches Limit, a page comes back
// short (source exhausted), or a page is empty. Each fetch depends on the
// previous page's result, so the loop is strictly sequential. The final result
// is truncated to exactly Limit rows.
func AccumulatePages[T any](req PageRequest, fetch func(limit, offset int) ([]T, error)) ([]T, error) {
	req = req.Normalize()

	rows := make([]T, 0, req.PageSize)
	offset := req.Offset()
	for len(rows) < req.Limit {
		page, err := fetch(req.PageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page at offset %d: %w", offset, err)
		}
		rows = append(rows, page...)
		if len(page) < req.PageSize {
			break
		}
		offset += req.PageSize
	}

	if len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	return rows, nil
}

// TruncateString clips strings longer than 200 characters to 197 plus a
// three-character ellipsis marker, keeping the output at exactly 200.
// Lengths are measured in runes, not bytes, so multibyte text is never cut
// mid-character.
func TruncateString(s string) string {
	if utf8.RuneCountInString(s) <= truncateAt {
		return s
	}
	return string([]rune(s)[:truncateKeep]) + truncateMarker
}

// TruncatePtr applies TruncateString in place to an optional field.
func TruncatePtr(s *string) {
	if s == nil {
		return
	}
	*s = TruncateString(*s)
}
