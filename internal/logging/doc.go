// Package logging provides the logging interface shared by karacalc's
// front ends (CLI, HTTP server, calibration). The default backend is
// zerolog; a standard library adapter exists for plain-text output.
package logging
