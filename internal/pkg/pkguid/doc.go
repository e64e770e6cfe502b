// Package pkguid provides helpers for generating unique identifiers.
//
// The codebase uses these interfaces to avoid hard-coding a specific UID
// strategy:
//   - String IDs (UUIDv7) tag requests with correlation IDs.
//   - Numeric IDs (Snowflake) identify uploaded file records.
package pkguid
