// Package pkgerror holds the error vocabulary shared by use cases and the HTTP
// edge. Use cases return *Error values tagged with a type and a code; the
// router maps them to status codes and either re-renders a page or answers
// with a JSON envelope.
package pkgerror
