// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package pagination slices ordered collections into fixed-size pages.
// Page numbers are 1-indexed and come from untrusted query parameters:
// anything unparsable resolves to the first page and out-of-range numbers
// clamp to the nearest valid page instead of erroring.
package pagination

import "strconv"

// Page describes one window over an ordered collection. Offset and Limit
// are ready to feed into a SQL OFFSET/LIMIT pair.
type Page struct {
	Number     int // 1-indexed, clamped into [1, TotalPages]
	Size       int
	TotalItems int
	TotalPages int
	Offset     int
	Limit      int
	HasNext    bool
	HasPrev    bool
}

// ParseRequested converts a raw query parameter into a requested page
// number. Unparsable or sub-1 values resolve to the first page.
func ParseRequested(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Resolve clamps the requested page number against the collection size
// and returns the resulting window. An empty collection still has one
// (empty) page so templates always have a page object to render.
func Resolve(requested, totalItems, perPage int) Page {
	if perPage < 1 {
		perPage = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	offset := (number - 1) * perPage
	limit := perPage
	if remaining := totalItems - offset; remaining < limit {
		limit = remaining
	}
	if limit < 0 {
		limit = 0
	}

	return Page{
		Number:     number,
		Size:       perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Offset:     offset,
		Limit:      limit,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}

// ResolveParam combines ParseRequested and Resolve for handler use.
func ResolveParam(raw string, totalItems, perPage int) Page {
	return Resolve(ParseRequested(raw), totalItems, perPage)
}

// Next returns the next page number (valid only when HasNext).
func (p Page) Next() int { return p.Number + 1 }

// Prev returns the previous page number (valid only when HasPrev).
func (p Page) Prev() int { return p.Number - 1 }
