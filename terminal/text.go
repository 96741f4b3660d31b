package terminal

import (
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
)

// Sanitize truncates text wider than MaxChars, ending it with Ellipsis
func Sanitize(text string) string {
	return runewidth.Truncate(text, MaxChars, Ellipsis)
}

// IDColumnWidth returns the effective identifier column width
func (t *Terminal) IDColumnWidth() int {
	return t.cfg.idWidth
}

// AssignID sets the row identifier from line. The first match wins; lines
// that do not match leave the row untouched.
func (t *Terminal) AssignID(offset int, line string) {
	id, ok := t.cfg.id.Extract(line)
	if !ok {
		return
	}
	row := &t.rows[offset]
	if t.cfg.idJustify {
		id = justify(id, t.cfg.idWidth)
	}
	row.ID = id
	row.IDMatched = true
	t.logger.Debug("row identified", zap.Int("offset", offset), zap.String("id", id))
}

// justify right-aligns id in width cells. Longer ids keep their tail so
// that the most specific part (uuid suffix, file name) stays visible.
func justify(id string, width int) string {
	if runewidth.StringWidth(id) <= width {
		return runewidth.FillLeft(id, width)
	}
	prefix, room := Ellipsis, width-len(Ellipsis)
	if room <= 0 {
		prefix, room = "", width
	}
	r := []rune(id)
	start := len(r)
	for start > 0 && runewidth.StringWidth(string(r[start-1:])) <= room {
		start--
	}
	// a wide rune cut at the boundary leaves one cell to pad
	return runewidth.FillLeft(prefix+string(r[start:]), width)
}
