// Package pkgrouter wraps HTTP routing and common middleware used by the
// service.
//
// It provides a small router abstraction over httprouter plus shared concerns
// like response encoding (JSON, HTML pages, redirects, file downloads), error
// mapping, static file serving, logging, recovery, and correlation ID
// propagation.
package pkgrouter
