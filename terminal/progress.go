package terminal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// progressTick fills the completed part of a progress bar
const progressTick = "■"

// AssignTotal resolves the row's progress total from line. It is a no-op
// when the line does not match or the total is already known.
func (t *Terminal) AssignTotal(offset int, line string) {
	row := &t.rows[offset]
	if row.HasTotal {
		return
	}
	total, ok, err := extractInt(t.cfg.total, line)
	if err != nil {
		t.logger.Debug("ignoring progress total", zap.Int("offset", offset), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	t.setTotal(row, total)
	t.logger.Debug("progress total resolved",
		zap.Int("offset", offset),
		zap.Int("total", total),
		zap.Int("modulus", row.Modulus))
}

// setTotal records total and derives the redraw modulus from it
func (t *Terminal) setTotal(row *Row, total int) {
	row.Total = total
	row.HasTotal = true
	row.Modulus = modulus(total)
}

// modulus is the number of count updates between redraws, at least one
func modulus(total int) int {
	m := int(math.RoundToEven(float64(total) / ProgressBarWidth))
	if m < 1 {
		return 1
	}
	return m
}

// ProgressText advances the row's progress state with line and returns the
// text to display. It returns false when nothing should be redrawn.
func (t *Terminal) ProgressText(offset int, line string) (string, bool) {
	row := &t.rows[offset]
	if !row.HasTotal {
		t.AssignTotal(offset, line)
		if !row.HasTotal {
			return "", false
		}
	}

	if row.Count == row.Total {
		return CompleteMessage, true
	}

	count, ok, err := extractInt(t.cfg.count, line)
	if err != nil {
		t.logger.Debug("ignoring progress count", zap.Int("offset", offset), zap.Error(err))
	}
	if !ok {
		return "", false
	}
	if count > row.Total {
		count = row.Total
	}
	if count > row.Count {
		row.Count = count
	}

	row.ModulusCount++
	if row.ModulusCount >= row.Modulus || row.Count%row.Modulus == 0 || row.Count == row.Total {
		row.ModulusCount = 0
		return t.progressLine(row), true
	}
	return "", false
}

// progressLine formats the bar, percentage and fraction for row
func (t *Terminal) progressLine(row *Row) string {
	ratio := float64(row.Count) / float64(row.Total)
	if row.Total == 0 {
		ratio = 1
	}
	filled := int(math.RoundToEven(ProgressBarWidth * ratio))
	percent := int(math.RoundToEven(ratio * 100))

	digits := t.cfg.digits
	if n := len(strconv.Itoa(row.Total)); n > digits {
		digits = n
	}

	bar := strings.Repeat(progressTick, filled) + strings.Repeat(" ", ProgressBarWidth-filled)
	return fmt.Sprintf("Processing |%s| %3d%% %*d/%d", bar, percent, digits, row.Count, row.Total)
}
