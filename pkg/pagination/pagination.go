package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// PageRequest represents a client request for a page of data with an
// optional search filter.
type PageRequest struct {
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
	Search   *string `json:"search,omitempty"`
}

// Normalize adjusts the request to ensure valid pagination values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	if r.PageSize > cfg.MaxPageSize {
		r.PageSize = cfg.MaxPageSize
	}
}

// Offset calculates the number of records to skip based on page and page
// size. Products past math.MaxInt saturate instead of wrapping.
func (r *PageRequest) Offset() int {
	if r.Page < 2 || r.PageSize < 1 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.PageSize {
		return math.MaxInt
	}
	return (r.Page - 1) * r.PageSize
}

// Matches reports whether s contains the search term, ignoring case.
// Every value matches when no search is set.
func (r *PageRequest) Matches(s string) bool {
	if r.Search == nil {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(*r.Search))
}

// PageRequestFromQuery parses pagination parameters from URL query values.
// Supported parameters: page, page_size, search.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	pageSize, _ := strconv.Atoi(values.Get("page_size"))

	var search *string
	if s := strings.TrimSpace(values.Get("search")); s != "" {
		search = &s
	}

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
		Search:   search,
	}

	req.Normalize(cfg)
	return req
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPageResult creates a PageResult with calculated total pages.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	totalPages := 1
	if pageSize > 0 && total > 0 {
		totalPages = (total-1)/pageSize + 1
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Slice filters items by key against the request search and returns the
// requested page. A page past the end returns empty data.
func Slice[T any](items []T, key func(T) string, req PageRequest) PageResult[T] {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if req.Matches(key(item)) {
			matched = append(matched, item)
		}
	}

	start := min(req.Offset(), len(matched))
	end := start + min(max(req.PageSize, 0), len(matched)-start)

	return NewPageResult(matched[start:end], len(matched), req.Page, req.PageSize)
}
