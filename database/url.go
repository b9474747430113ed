package database

import "strings"

// ConstructDatabaseURL appends databaseName to the path of baseURL, keeping any
// query string, and defaults sslmode to disable when the URL does not set it.
// An empty databaseName returns baseURL untouched.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	if hasQuery {
		base = strings.TrimRight(base, "/")
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("/")
	b.WriteString(databaseName)

	if hasQuery && query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}

	if !strings.Contains(query, "sslmode=") {
		if hasQuery && query != "" {
			b.WriteString("&")
		} else {
			b.WriteString("?")
		}
		b.WriteString("sslmode=disable")
	}

	return b.String()
}
