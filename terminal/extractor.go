package terminal

import (
	"fmt"
	"regexp"
	"strconv"
)

// valueGroup is the named capture group every extraction pattern must carry
const valueGroup = "value"

// Extractor pulls a single value out of a log line
type Extractor interface {
	// Extract returns the extracted value and whether the line matched
	Extract(line string) (string, bool)
}

// literalExtractor always yields the same value regardless of the line
type literalExtractor string

func (l literalExtractor) Extract(string) (string, bool) {
	return string(l), true
}

// patternExtractor yields the "value" capture of a compiled pattern
type patternExtractor struct {
	re    *regexp.Regexp
	index int
}

func (p patternExtractor) Extract(line string) (string, bool) {
	m := p.re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[p.index], true
}

// noneExtractor never matches; used when a pattern is not configured
type noneExtractor struct{}

func (noneExtractor) Extract(string) (string, bool) {
	return "", false
}

// Literal returns an Extractor that always yields value
func Literal(value string) Extractor {
	return literalExtractor(value)
}

// None returns an Extractor that never matches
func None() Extractor {
	return noneExtractor{}
}

// Pattern compiles expr into an Extractor yielding its "value" group.
// An empty expression yields None.
func Pattern(expr string) (Extractor, error) {
	if expr == "" {
		return None(), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	return fromRegexp(re)
}

func fromRegexp(re *regexp.Regexp) (Extractor, error) {
	index := re.SubexpIndex(valueGroup)
	if index < 0 {
		return nil, fmt.Errorf("pattern %q has no (?P<%s>...) group", re.String(), valueGroup)
	}
	return patternExtractor{re: re, index: index}, nil
}

// extractInt runs e against line and parses the result as an integer.
// A value that is not an integer is reported as an error and no match.
func extractInt(e Extractor, line string) (int, bool, error) {
	raw, ok := e.Extract(line)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("parse captured value %q: %w", raw, err)
	}
	return n, true, nil
}
