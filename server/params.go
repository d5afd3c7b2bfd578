package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/poiesic/kokushi/core"
	"github.com/poiesic/kokushi/search"
)

// values returns every value of key, splitting comma separated lists, so
// that ?year=117&year=118 and ?year=117,118 are equivalent.
func values(params url.Values, key string) []string {
	var out []string
	for _, v := range params[key] {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// names returns every non-blank value of key. Category names may contain
// commas, so name facets are only repeated, never split.
func names(params url.Values, key string) []string {
	var out []string
	for _, v := range params[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseQuery(params url.Values) (search.Query, error) {
	query := search.Query{
		Text:          params.Get("q"),
		Categories:    names(params, "category"),
		Subcategories: names(params, "subcategory"),
	}

	for _, v := range values(params, "year") {
		year, err := strconv.Atoi(v)
		if err != nil || year <= 0 {
			return search.Query{}, fmt.Errorf("%w: year %q", errBadParameter, v)
		}
		query.Years = append(query.Years, year)
	}

	for _, v := range values(params, "session") {
		session, ok := core.ParseSession(v)
		if !ok {
			return search.Query{}, fmt.Errorf("%w: session %q", errBadParameter, v)
		}
		query.Sessions = append(query.Sessions, session)
	}

	if v := params.Get("required"); v != "" {
		required, err := strconv.ParseBool(v)
		if err != nil {
			return search.Query{}, fmt.Errorf("%w: required %q", errBadParameter, v)
		}
		query.RequiredOnly = required
	}

	if v := params.Get("image"); v != "" {
		hasImage, err := strconv.ParseBool(v)
		if err != nil {
			return search.Query{}, fmt.Errorf("%w: image %q", errBadParameter, v)
		}
		query.HasImage = &hasImage
	}

	return query, nil
}

func (s *Server) parsePage(params url.Values) (offset, limit int, err error) {
	limit = s.pageSize
	if v := params.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("%w: offset %q", errBadParameter, v)
		}
	}
	if v := params.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			return 0, 0, fmt.Errorf("%w: limit %q", errBadParameter, v)
		}
		limit = min(limit, s.maxPageSize)
	}
	return offset, limit, nil
}
