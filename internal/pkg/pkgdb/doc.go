// Package pkgdb opens database/sql connections for the supported backends and
// applies embedded golang-migrate migrations to them.
package pkgdb
