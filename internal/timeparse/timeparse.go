// Package timeparse turns the free-text close times users type ("1 hour",
// "in 3 days", "tomorrow at 5pm", "2026-11-03 18:00") into instants, and
// formats instants relative to now for display.
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/msomdec/predictions/internal/domain"
)

var offsetPattern = regexp.MustCompile(
	`(?i)^(?:in\s+)?([+-]?\d+(?:\.\d+)?)\s*(s|secs?|seconds?|m|mins?|minutes?|h|hrs?|hours?|d|days?|w|weeks?)(?:\s+from\s+now)?$`)

var absoluteLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Parser resolves close times. Wall-clock times without an explicit zone
// are read in the parser's reference location.
type Parser struct {
	loc *time.Location
	w   *when.Parser
}

// New creates a Parser whose reference location is loc.
func New(loc *time.Location) *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{loc: loc, w: w}
}

// Location returns the reference location.
func (p *Parser) Location() *time.Location { return p.loc }

// Parse resolves text relative to now and returns the instant in UTC.
func (p *Parser) Parse(text string, now time.Time) (time.Time, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", domain.ErrInvalidDateTime)
	}

	if m := offsetPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return now.Add(time.Duration(n * float64(unit(m[2])))).UTC(), nil
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, p.loc); err == nil {
			return t.UTC(), nil
		}
	}

	r, err := p.w.Parse(s, now.In(p.loc))
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("%w: %s", domain.ErrInvalidDateTime, text)
	}
	return r.Time.UTC(), nil
}

func unit(s string) time.Duration {
	switch strings.ToLower(s)[0] {
	case 's':
		return time.Second
	case 'm':
		return time.Minute
	case 'h':
		return time.Hour
	case 'd':
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Relative describes then relative to now, e.g. "3 hours ago" or "2 days from now".
func Relative(then, now time.Time) string {
	return humanize.RelTime(then, now, "ago", "from now")
}
