// Package dataset holds an uploaded CSV file as a typed, in-memory table and
// computes the descriptive statistics shown on the analysis page.
//
// Every cell is parsed once into a Value whose Kind is numeric, text or
// missing; a column's Kind is derived from its cells. Nothing here streams:
// a Frame is the whole file.
package dataset
