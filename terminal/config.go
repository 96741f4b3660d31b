package terminal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalidConfig is returned by New for any configuration it cannot accept
var ErrInvalidConfig = errors.New("invalid terminal configuration")

// Config controls how log lines are turned into row text
type Config struct {
	IDRegex   string // pattern with a "value" group naming the row
	IDJustify bool   // right-justify identifiers into the id column
	IDWidth   int    // id column width, 0 or anything above IDWidth means the default
	TextRegex string // when set, only matching plain lines are displayed

	// ProgressBar switches every row to progress bar rendering
	ProgressBar *ProgressBarConfig
}

// ProgressBarConfig describes how to find a row's progress in its log lines
type ProgressBarConfig struct {
	// Total is either an integer literal or a pattern (string or
	// *regexp.Regexp) whose "value" group carries the row total.
	Total any

	CountRegex string // pattern whose "value" group carries the running count
	MaxTotal   int    // largest expected total, used to align the count column
}

// compiled holds the validated, ready-to-use form of a Config
type compiled struct {
	id        Extractor
	hasID     bool
	text      *regexp.Regexp
	progress  bool
	total     Extractor
	literal   bool
	count     Extractor
	digits    int
	idJustify bool
	idWidth   int
}

// validateLines checks the requested row count against MaxLines
func validateLines(lines int) error {
	if lines < 0 || lines > MaxLines {
		return fmt.Errorf("%w: lines must be between 0 and %d, got %d", ErrInvalidConfig, MaxLines, lines)
	}
	return nil
}

// compileConfig validates cfg and compiles all of its patterns
func compileConfig(cfg *Config) (*compiled, error) {
	c := &compiled{
		id:      None(),
		total:   None(),
		count:   None(),
		idWidth: IDWidth,
	}
	if cfg == nil {
		return c, nil
	}

	if cfg.IDRegex != "" {
		id, err := Pattern(cfg.IDRegex)
		if err != nil {
			return nil, fmt.Errorf("%w: id_regex: %v", ErrInvalidConfig, err)
		}
		c.id = id
		c.hasID = true
	}
	c.idJustify = cfg.IDJustify
	if cfg.IDWidth > 0 && cfg.IDWidth <= IDWidth {
		c.idWidth = cfg.IDWidth
	}

	if cfg.TextRegex != "" {
		re, err := regexp.Compile(cfg.TextRegex)
		if err != nil {
			return nil, fmt.Errorf("%w: text_regex: %v", ErrInvalidConfig, err)
		}
		c.text = re
	}

	if cfg.ProgressBar != nil {
		if err := c.compileProgressBar(cfg.ProgressBar); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *compiled) compileProgressBar(pb *ProgressBarConfig) error {
	if pb.Total == nil || pb.CountRegex == "" {
		return fmt.Errorf("%w: progress_bar requires total and count_regex", ErrInvalidConfig)
	}

	switch total := pb.Total.(type) {
	case int:
		c.total = Literal(strconv.Itoa(total))
		c.literal = true
	case int64:
		c.total = Literal(strconv.FormatInt(total, 10))
		c.literal = true
	case string:
		e, err := Pattern(total)
		if err != nil || total == "" {
			return fmt.Errorf("%w: progress_bar total must be an integer or a pattern: %q", ErrInvalidConfig, total)
		}
		c.total = e
	case *regexp.Regexp:
		e, err := fromRegexp(total)
		if err != nil {
			return fmt.Errorf("%w: progress_bar total: %v", ErrInvalidConfig, err)
		}
		c.total = e
	default:
		return fmt.Errorf("%w: progress_bar total must be an integer or a pattern, got %T", ErrInvalidConfig, pb.Total)
	}

	count, err := Pattern(pb.CountRegex)
	if err != nil {
		return fmt.Errorf("%w: count_regex: %v", ErrInvalidConfig, err)
	}
	c.count = count
	c.progress = true
	if pb.MaxTotal > 0 {
		c.digits = len(strconv.Itoa(pb.MaxTotal))
	}
	return nil
}
