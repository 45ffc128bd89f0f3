package api

import (
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
)

// encodeQuery renders the non-empty fields of opts in the given key order.
// url.Values.Encode sorts keys, which would lose that order.
func encodeQuery(opts any, keys ...string) (string, error) {
	values, err := query.Values(opts)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		for _, value := range values[key] {
			parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
		}
	}
	return strings.Join(parts, "&"), nil
}

func withQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
