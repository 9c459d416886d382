package repository

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"authrelay/internal/apperr"
)

// PageSize is either a positive row count or the literal "all".
type PageSize struct {
	All   bool
	Value int
}

func (p PageSize) MarshalJSON() ([]byte, error) {
	if p.All {
		return json.Marshal("all")
	}
	return json.Marshal(p.Value)
}

func (p *PageSize) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s != "all" {
			return fmt.Errorf("page size must be 'all' or a positive integer")
		}
		p.All = true
		return nil
	}
	return json.Unmarshal(b, &p.Value)
}

// FindQuery carries the resolved listing parameters shared by every resource.
type FindQuery struct {
	Ordering          string
	Page              int
	PageSize          PageSize
	CreatedBefore     *time.Time
	CreatedOnOrBefore *time.Time
	CreatedAfter      *time.Time
	CreatedOnOrAfter  *time.Time
}

// Defaults are the configured fallbacks applied when a parameter is absent.
type Defaults struct {
	Page     int
	PageSize int
	Ordering string
}

// Metadata echoes the resolved query back to the client. total_count is the
// number of rows returned on this page, not the size of the filtered set.
type Metadata struct {
	Ordering          string     `json:"ordering"`
	Page              int        `json:"page"`
	PageSize          PageSize   `json:"page_size"`
	TotalCount        int        `json:"total_count"`
	CreatedBefore     *time.Time `json:"created_before"`
	CreatedOnOrBefore *time.Time `json:"created_on_or_before"`
	CreatedAfter      *time.Time `json:"created_after"`
	CreatedOnOrAfter  *time.Time `json:"created_on_or_after"`
}

type FindResult[T any] struct {
	Data     []T      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDatetime(name, raw string) (*time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperr.Validation(fmt.Sprintf("invalid datetime value for %s: %s", name, raw))
}

// ParseFindQuery binds and validates the common listing parameters from the
// request query string.
func ParseFindQuery(values url.Values, d Defaults) (FindQuery, error) {
	q := FindQuery{
		Ordering: d.Ordering,
		Page:     d.Page,
		PageSize: PageSize{Value: d.PageSize},
	}

	if raw := values.Get("ordering"); raw != "" {
		q.Ordering = raw
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page <= 0 {
			return q, apperr.Validation("Page must be a positive integer")
		}
		q.Page = page
	}

	if raw := values.Get("page_size"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			if size < 0 {
				return q, apperr.Validation("Page size must be a positive integer")
			}
			q.PageSize = PageSize{Value: size}
		} else if raw == "all" {
			q.PageSize = PageSize{All: true}
		} else {
			return q, apperr.Validation("Page size must be 'all' or a positive integer")
		}
	}

	var err error
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"created_before", &q.CreatedBefore},
		{"created_on_or_before", &q.CreatedOnOrBefore},
		{"created_after", &q.CreatedAfter},
		{"created_on_or_after", &q.CreatedOnOrAfter},
	} {
		if raw := values.Get(p.name); raw != "" {
			if *p.dst, err = parseDatetime(p.name, raw); err != nil {
				return q, err
			}
		}
	}

	if err := q.validateDateRanges(); err != nil {
		return q, err
	}
	return q, nil
}

func (q FindQuery) validateDateRanges() error {
	if q.CreatedAfter != nil && q.CreatedOnOrAfter != nil {
		return apperr.Validation("CONFLICTING_DATE_FILTERS: Cannot use both created_after and created_on_or_after")
	}
	if q.CreatedBefore != nil && q.CreatedOnOrBefore != nil {
		return apperr.Validation("CONFLICTING_DATE_FILTERS: Cannot use both created_before and created_on_or_before")
	}

	start := q.CreatedAfter
	if start == nil {
		start = q.CreatedOnOrAfter
	}
	end := q.CreatedBefore
	if end == nil {
		end = q.CreatedOnOrBefore
	}
	if start != nil && end != nil && !start.Before(*end) {
		return apperr.Validation("INVALID_DATE_RANGE: Start date must be before end date")
	}
	return nil
}

func (q FindQuery) metadata(totalCount int) Metadata {
	return Metadata{
		Ordering:          q.Ordering,
		Page:              q.Page,
		PageSize:          q.PageSize,
		TotalCount:        totalCount,
		CreatedBefore:     q.CreatedBefore,
		CreatedOnOrBefore: q.CreatedOnOrBefore,
		CreatedAfter:      q.CreatedAfter,
		CreatedOnOrAfter:  q.CreatedOnOrAfter,
	}
}
