package pkgrouter

import (
	"net/http"

	"github.com/shandysiswandi/csvinsight/internal/pkg/pkglog"
	"github.com/shandysiswandi/csvinsight/internal/pkg/pkguid"
)

const (
	// HeaderCorrelationID carries the request correlation ID in both directions.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is accepted from proxies that use this name instead.
	HeaderRequestID = "X-Request-ID"

	maxCIDLen = 128
)

// normalizeCID returns v when it is a usable correlation ID, otherwise "".
// Only printable ASCII without spaces is accepted; longer values are cut.
func normalizeCID(v string) string {
	if len(v) > maxCIDLen {
		v = v[:maxCIDLen]
	}
	for i := 0; i < len(v); i++ {
		if c := v[i]; c <= ' ' || c > '~' {
			return ""
		}
	}
	return v
}

// middlewareCorrelationID tags each request with a correlation ID, taken from
// the incoming headers or generated, and echoes it in the response.
func middlewareCorrelationID(uid pkguid.StringID) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := normalizeCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				cid = normalizeCID(r.Header.Get(HeaderRequestID))
			}
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(pkglog.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
