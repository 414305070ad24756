// Package library holds the built-in node specs: a number generator, a
// delay, a printer and two sinks.
package library
