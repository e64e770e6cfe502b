// Package pkgconfig provides a small abstraction for reading configuration values.
//
// Values come from a YAML file loaded through Viper, with built-in defaults for
// every key the service reads and CSVINSIGHT_* environment overrides on top.
// Business code depends on the Config interface so it stays easy to test and
// does not care where values come from.
package pkgconfig
