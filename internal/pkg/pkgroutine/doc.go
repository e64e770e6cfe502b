// Package pkgroutine contains helpers for running goroutines safely.
//
// The Manager type limits concurrency, collects returned errors, and logs
// panics so that background work does not crash the process silently. Tick
// drives periodic jobs such as the retention sweeper.
package pkgroutine
