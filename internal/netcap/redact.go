package netcap

import (
	"net/url"
	"strings"
)

// sensitiveParams is the closed set of query keys (compared
// lowercase) whose values are replaced with "redacted"; every other
// query parameter keeps its key but has its value dropped, per
// spec.md §4.7.
var sensitiveParams = map[string]bool{
	"token":         true,
	"access_token":  true,
	"auth":          true,
	"authorization": true,
	"code":          true,
	"password":      true,
	"pass":          true,
}

// RedactURL rewrites u's query values per spec.md §4.7. Non-parseable URLs
// are passed through unchanged.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if len(q) == 0 {
		return raw
	}
	for key, values := range q {
		replacement := ""
		if sensitiveParams[strings.ToLower(key)] {
			replacement = "redacted"
		}
		for i := range values {
			values[i] = replacement
		}
		q[key] = values
	}
	u.RawQuery = q.Encode()
	return u.String()
}
