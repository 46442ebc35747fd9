// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Sumcoevolity summarizes one or more ecoevolity state logs: for each
// numeric column it reports the posterior mean, variance, effective
// sample size, and a highest posterior density interval, plus the
// potential scale reduction factor across logs when more than one is
// given (a standard multi-chain convergence check).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/js-arias/command"
	"github.com/jsalarias/ecoevolity/ecoerr"
	"github.com/jsalarias/ecoevolity/statsutil"
)

var app = &command.Command{
	Usage: "sumcoevolity [--burnin <int>] [--hpd <float>] <log-file>...",
	Short: "summarize ecoevolity state logs",
	Long: `
Sumcoevolity reads one or more tab-delimited state logs written by ecoevolity
and reports, for every numeric column, the posterior mean, sample variance,
effective sample size, and a highest posterior density interval. When given
more than one log, it also reports the potential scale reduction factor
(PSRF) across them, which should be close to 1.0 for logs from independent
chains that have converged to the same posterior.

Use --burnin to discard that many leading rows from every log before
summarizing (default 0). Use --hpd to set the HPDI probability mass
(default 0.95).
	`,
	SetFlags: setFlags,
	Run:      run,
}

var burninFlag int
var hpdFlag float64

func setFlags(c *command.Command) {
	c.Flags().IntVar(&burninFlag, "burnin", 0, "")
	c.Flags().Float64Var(&hpdFlag, "hpd", 0.95, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting at least one log file")
	}

	var header []string
	chains := make([][][]float64, 0, len(args)) // chains[file][column] = values

	for _, path := range args {
		h, cols, err := readLog(path, burninFlag)
		if err != nil {
			return err
		}
		if header == nil {
			header = h
		} else if !sameHeader(header, h) {
			return &ecoerr.SettingError{Message: fmt.Sprintf("%s: column header does not match the first log file", path)}
		}
		chains = append(chains, cols)
	}

	w := bufio.NewWriter(c.Stdout())
	defer w.Flush()

	fmt.Fprintf(w, "parameter\tmean\tvariance\tESS\thpd_%.2f_lo\thpd_%.2f_hi", hpdFlag, hpdFlag)
	if len(chains) > 1 {
		fmt.Fprint(w, "\tPSRF")
	}
	fmt.Fprintln(w)

	for col, name := range header {
		pooled := pooledColumn(chains, col)
		mean, variance := statsutil.MeanVariance(pooled)
		ess := statsutil.ESS(pooled)
		lo, hi := statsutil.HPDI(pooled, hpdFlag)
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.1f\t%.6f\t%.6f", name, mean, variance, ess, lo, hi)
		if len(chains) > 1 {
			perChain := make([][]float64, len(chains))
			for i := range chains {
				perChain[i] = chains[i][col]
			}
			fmt.Fprintf(w, "\t%.4f", statsutil.PSRF(perChain))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// readLog reads a tab-delimited log with a header row, returning the
// header and, for every column, the values that parse as float64
// (integer columns such as "generation" parse and are kept). A field
// that fails to parse is skipped on its own; its column stays in the
// header, so a wholly non-numeric column is returned with no values.
// The first burnin data rows are discarded.
func readLog(path string, burnin int) ([]string, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !sc.Scan() {
		return nil, nil, &ecoerr.ParsingError{Path: path, Message: "empty log file"}
	}
	header := strings.Split(sc.Text(), "\t")
	cols := make([][]float64, len(header))

	row := 0
	for sc.Scan() {
		row++
		if row <= burnin {
			continue
		}
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) != len(header) {
			return nil, nil, &ecoerr.ParsingError{Path: path, Message: fmt.Sprintf("row %d has %d columns, want %d", row, len(fields), len(header))}
		}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				continue
			}
			cols[i] = append(cols[i], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return header, cols, nil
}

func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func pooledColumn(chains [][][]float64, col int) []float64 {
	var out []float64
	for _, chain := range chains {
		out = append(out, chain[col]...)
	}
	return out
}

func main() {
	app.Main()
}
