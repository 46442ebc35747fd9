// Copyright © 2024 The ecoevolity authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

package biallelicdata

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jsalarias/ecoevolity/ecoerr"
)

// ParseOptions controls how ParseNexus assigns taxa to populations
// and interprets character states.
type ParseOptions struct {
	// PopulationDelimiter splits a taxon label into population and
	// individual parts, e.g. "speciesA-ind1" with delimiter "-". If
	// empty, every taxon is its own population.
	PopulationDelimiter string

	// PopulationIsPrefix selects whether the population label is the
	// part of a split taxon label before the delimiter (true) or
	// after it (false).
	PopulationIsPrefix bool

	// GenotypesAreDiploid treats each character-matrix cell as a
	// diploid genotype (0, 1, or 2 copies of the red allele)
	// rather than a single haploid allele call.
	GenotypesAreDiploid bool

	// Dominant marks the resulting data as dominant-marker (AFLP-
	// style, {0,1} presence/absence only, no heterozygote call).
	Dominant bool
}

// ParseNexus reads a Nexus-like character matrix with TAXA and
// CHARACTERS (or DATA) blocks using the {0,1,?,-} biallelic alphabet,
// an optional CHARSETS block recording locus boundaries, and returns
// the resulting BiallelicData. Taxon labels are grouped into
// populations per opts.
func ParseNexus(r io.Reader, opts ParseOptions) (*BiallelicData, error) {
	taxonOrder, matrix, charsets, err := readBlocks(r)
	if err != nil {
		return nil, err
	}
	if len(taxonOrder) == 0 {
		return nil, &ecoerr.ParsingError{Message: "no taxa found"}
	}

	popOf := make(map[string]string, len(taxonOrder))
	var popOrder []string
	popSeen := make(map[string]bool)
	for _, taxon := range taxonOrder {
		pop := populationOf(taxon, opts)
		popOf[taxon] = pop
		if !popSeen[pop] {
			popSeen[pop] = true
			popOrder = append(popOrder, pop)
		}
	}
	popIndex := make(map[string]int, len(popOrder))
	for i, p := range popOrder {
		popIndex[p] = i
	}

	nChars := 0
	for _, seq := range matrix {
		if len(seq) > nChars {
			nChars = len(seq)
		}
	}

	d := New(popOrder)
	d.SetDominant(opts.Dominant)

	for col := 0; col < nChars; col++ {
		red := make([]int, len(popOrder))
		total := make([]int, len(popOrder))
		for _, taxon := range taxonOrder {
			seq := matrix[taxon]
			if col >= len(seq) {
				continue
			}
			r, a, err := decodeState(seq[col], opts)
			if err != nil {
				return nil, fmt.Errorf("taxon %q, column %d: %w", taxon, col, err)
			}
			pi := popIndex[popOf[taxon]]
			red[pi] += r
			total[pi] += a
		}
		if err := d.AddPattern(red, total); err != nil {
			return nil, err
		}
		for _, end := range charsets {
			if end == col+1 {
				d.MarkLocusEnd()
			}
		}
	}
	return d, nil
}

func populationOf(taxon string, opts ParseOptions) string {
	if opts.PopulationDelimiter == "" {
		return taxon
	}
	parts := strings.SplitN(taxon, opts.PopulationDelimiter, 2)
	if len(parts) != 2 {
		return taxon
	}
	if opts.PopulationIsPrefix {
		return parts[0]
	}
	return parts[1]
}

// decodeState returns the (red, total) allele contribution of a
// single character-matrix cell: total is 0 for missing data ('?' or
// '-'), 1 for a called haploid/dominant state, or 2 for a called
// diploid genotype.
func decodeState(c byte, opts ParseOptions) (red, total int, err error) {
	switch c {
	case '?', '-', 'N', 'n':
		return 0, 0, nil
	case '0':
		if opts.GenotypesAreDiploid {
			return 0, 2, nil
		}
		return 0, 1, nil
	case '1':
		if opts.GenotypesAreDiploid {
			return 1, 2, nil
		}
		return 1, 1, nil
	case '2':
		if !opts.GenotypesAreDiploid {
			return 0, 0, &ecoerr.ParsingError{Message: "state '2' is only valid for diploid genotype counts"}
		}
		return 2, 2, nil
	default:
		return 0, 0, &ecoerr.ParsingError{Message: fmt.Sprintf("unrecognized character state %q", string(c))}
	}
}

// readBlocks performs a minimal, line-oriented Nexus scan: it
// recognizes "matrix", "end;"/"endblock;", and "charset NAME = a-b;"
// statements, case-insensitively, ignores every other line (including
// "begin" lines, so the block a matrix sits in is not checked), and
// is tolerant of whitespace-delimited or tab-delimited matrix rows. It is not a general Nexus parser — only the subset the
// biallelic pipeline emits and consumes.
func readBlocks(r io.Reader) (taxonOrder []string, matrix map[string]string, charsetEnds []int, err error) {
	matrix = make(map[string]string)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var inMatrix bool
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "matrix"):
			inMatrix = true
			continue
		case strings.HasPrefix(lower, "end;") || strings.HasPrefix(lower, "endblock;"):
			inMatrix = false
			continue
		case strings.HasPrefix(lower, "charset"):
			name, _, hi, perr := parseCharset(line)
			if perr != nil {
				return nil, nil, nil, &ecoerr.ParsingError{Line: lineNo, Message: perr.Error()}
			}
			_ = name
			charsetEnds = append(charsetEnds, hi)
			continue
		}
		if inMatrix {
			fields := strings.Fields(strings.TrimSuffix(line, ";"))
			if len(fields) < 2 {
				continue
			}
			taxon := fields[0]
			states := fields[1]
			if _, seen := matrix[taxon]; !seen {
				taxonOrder = append(taxonOrder, taxon)
			}
			matrix[taxon] += states
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, err
	}
	return taxonOrder, matrix, charsetEnds, nil
}

func parseCharset(line string) (name string, lo, hi int, err error) {
	line = strings.TrimSuffix(strings.TrimSpace(line), ";")
	fields := strings.Fields(line)
	if len(fields) < 4 || strings.ToLower(fields[0]) != "charset" || fields[2] != "=" {
		return "", 0, 0, fmt.Errorf("malformed charset statement %q", line)
	}
	name = fields[1]
	rangeTok := fields[3]
	parts := strings.SplitN(rangeTok, "-", 2)
	if len(parts) != 2 {
		return "", 0, 0, fmt.Errorf("malformed charset range %q", rangeTok)
	}
	lo, err1 := strconv.Atoi(parts[0])
	hi, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return "", 0, 0, fmt.Errorf("malformed charset range %q", rangeTok)
	}
	return name, lo, hi, nil
}
