// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package chainlog is the ambient operational logger for a running
// chain: generation progress, acceptance rates, and warnings. This is
// distinct from chain.StateLogWriter, which writes the tab-delimited
// MCMC sample log read back in by sumcoevolity — chainlog is for a
// human watching the run, not for downstream analysis.
package chainlog

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger configured for human-readable,
// timestamped console output.
type Logger struct {
	zl zerolog.Logger
}

// New returns a Logger writing to w.
func New(w io.Writer) *Logger {
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Info logs a plain informational message.
func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

// Progress logs periodic chain progress: the current generation, the
// running acceptance count out of generations run so far, and the
// wall-clock elapsed since the run started.
func (l *Logger) Progress(generation, numGenerations, accepted int, elapsed time.Duration) {
	rate := 0.0
	if generation > 0 {
		rate = float64(accepted) / float64(generation)
	}
	l.zl.Info().
		Int("generation", generation).
		Int("of", numGenerations).
		Float64("acceptance_rate", rate).
		Dur("elapsed", elapsed).
		Msg("chain progress")
}

// Warn logs a non-fatal problem: a data file with no segregating
// sites, an operator whose acceptance rate strayed far from target,
// and similar conditions the run should continue past.
func (l *Logger) Warn(msg string) {
	l.zl.Warn().Msg(msg)
}

// Error logs a run-ending problem before the caller returns it up the
// command's Run as an error.
func (l *Logger) Error(err error) {
	l.zl.Error().Err(err).Msg("run failed")
}
