/*
 * Copyright 2025 careforge.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"net/url"
	"strconv"
)

// Pagination defaults and bounds.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest is the caller-facing paging contract: page/pageSize plus the
// untrusted sort, search, and filter strings from the wire.
type PageRequest struct {
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
	Sort     string `json:"sort,omitempty"`
	Search   string `json:"search,omitempty"`
	Filter   string `json:"filter,omitempty"`
}

// Normalize applies defaulting and clamping: Page >= 1, PageSize in
// [1, MaxPageSize].
func (p *PageRequest) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// Offset returns the skip count for the normalized request.
func (p *PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageRequestFromValues parses the pagination wire format (query parameters
// page, pageSize, sort, search, filter). Unparsable numbers fall back to the
// defaults via Normalize.
func PageRequestFromValues(values url.Values) *PageRequest {
	req := &PageRequest{
		Sort:   values.Get("sort"),
		Search: values.Get("search"),
		Filter: values.Get("filter"),
	}
	if v, err := strconv.Atoi(values.Get("page")); err == nil {
		req.Page = v
	}
	if v, err := strconv.Atoi(values.Get("pageSize")); err == nil {
		req.PageSize = v
	}
	req.Normalize()
	return req
}

// PageMeta describes the position of a page within the full result set.
type PageMeta struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// PageResponse is the paged result envelope: the records for the requested
// page plus pagination metadata.
type PageResponse[T any] struct {
	Data       []*T     `json:"data"`
	Pagination PageMeta `json:"pagination"`
}

// NewPageResponse assembles a response, computing totalPages/hasNext/hasPrev
// from the given totals. Data is never nil.
func NewPageResponse[T any](data []*T, page, pageSize, total int) *PageResponse[T] {
	if data == nil {
		data = make([]*T, 0)
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	totalPages := (total + pageSize - 1) / pageSize
	return &PageResponse[T]{
		Data: data,
		Pagination: PageMeta{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}
