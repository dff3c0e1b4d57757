package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPMetricsMiddleware instruments requests with Prometheus metrics
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)
		dur := time.Since(start)
		ObserveHTTPRequest(r.Method, pathLabel(r.URL.Path), strconv.Itoa(ww.status), dur)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// resource segments that are followed by an identifier
var idParents = map[string]bool{
	"guests":        true,
	"organizations": true,
}

var fixedChildren = map[string]bool{
	"register": true,
	"signout":  true,
	"export":   true,
	"profile":  true,
}

// pathLabel replaces identifiers in the request path so label cardinality
// stays bounded.
func pathLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := 1; i < len(segments); i++ {
		if idParents[segments[i-1]] && !fixedChildren[segments[i]] {
			segments[i] = ":id"
		}
	}
	return "/" + strings.Join(segments, "/")
}
