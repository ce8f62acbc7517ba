// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"inkwell/internal/apperr"
	"inkwell/internal/render"
)

const (
	pageParam = "page"
	lastPage  = "last"
)

// Page is the envelope of every paginated list response.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// fetchFunc loads one window of rows and the total row count.
type fetchFunc[M any] func(limit, offset int) ([]M, int, error)

// paginate serves the page requested by ?page=N (or ?page=last). A page
// number past the end is 404, except the first page of an empty result.
func paginate[M, V any](w http.ResponseWriter, r *http.Request, opts Options, fetch fetchFunc[M], shape func([]M) []V) {
	size := opts.pageSize()
	raw := r.URL.Query().Get(pageParam)

	number := 1
	switch {
	case raw == "":
	case raw == lastPage:
		_, total, err := fetch(1, 0)
		if err != nil {
			render.Error(w, r, err)
			return
		}
		number = pageCount(total, size)
	default:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			render.Error(w, r, apperr.InvalidPage())
			return
		}
		number = n
	}

	items, total, err := fetch(size, (number-1)*size)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	pages := pageCount(total, size)
	if number > pages {
		render.Error(w, r, apperr.InvalidPage())
		return
	}

	body := Page[V]{Count: total, Results: shape(items)}
	if body.Results == nil {
		body.Results = []V{}
	}
	if number < pages {
		body.Next = pageLink(r, opts, number+1)
	}
	if number > 1 {
		body.Previous = pageLink(r, opts, number-1)
	}
	render.JSON(w, http.StatusOK, body)
}

// pageCount is the number of pages for total rows; an empty result still
// has one (empty) page.
func pageCount(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// pageLink builds the absolute URL of page n, keeping the other query
// parameters. The first page carries no page parameter.
func pageLink(r *http.Request, opts Options, n int) *string {
	q := r.URL.Query()
	if n == 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(n))
	}
	ref := &url.URL{Path: r.URL.Path, RawQuery: q.Encode()}
	link := opts.baseURL(r).ResolveReference(ref).String()
	return &link
}
