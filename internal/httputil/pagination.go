package httputil

import (
	"net/http"
	"net/url"
	"strconv"
)

// PageLinks builds the absolute next and previous URLs for page-number
// pagination, keeping every other query parameter of the request. A nil
// link means there is no such page.
func PageLinks(r *http.Request, page int, hasNext bool) (next, previous *string) {
	if page < 1 {
		page = 1
	}
	if hasNext {
		next = pageURL(r, page+1)
	}
	if page > 1 {
		previous = pageURL(r, page-1)
	}
	return next, previous
}

func pageURL(r *http.Request, page int) *string {
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u := url.URL{
		Scheme:   requestScheme(r),
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	s := u.String()
	return &s
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
