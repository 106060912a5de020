package command

import (
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/predictions/internal/service"
	"github.com/msomdec/predictions/internal/timeparse"
)

const timeLayout = "2006-01-02 15:04 MST"

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// when renders t in the reference zone followed by a relative hint.
func (e *Engine) when(t, now time.Time) string {
	return fmt.Sprintf("%s (%s)", t.In(e.Dates.Location()).Format(timeLayout), timeparse.Relative(t, now))
}

func (e *Engine) renderView(view *service.ContractView, now time.Time) string {
	c := view.Contract
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s (%s)\n", c.Name, c.Terms, c.Status())
	fmt.Fprintf(&b, "Created by %s %s\n", c.CreatorExternalID, timeparse.Relative(c.CreatedAt, now))
	switch {
	case c.IsClosed(now):
		fmt.Fprintf(&b, "Closed %s\n", e.when(c.ClosesAt, now))
	case c.IsResolved() || c.IsCancelled():
		fmt.Fprintf(&b, "Closed early, was due %s\n", e.when(c.ClosesAt, now))
	default:
		fmt.Fprintf(&b, "Closes %s\n", e.when(c.ClosesAt, now))
	}
	if c.ResolvedAt != nil {
		fmt.Fprintf(&b, "Resolved %s\n", e.when(*c.ResolvedAt, now))
	}
	if c.CancelledAt != nil {
		fmt.Fprintf(&b, "Cancelled %s\n", e.when(*c.CancelledAt, now))
	}

	b.WriteString("predictions:")
	for _, p := range view.Predictions {
		fmt.Fprintf(&b, "\n%s   %s (%s)", formatPercent(p.Value), p.UserExternalID, timeparse.Relative(p.CreatedAt, now))
	}
	writeScores(&b, view.Scores)
	return b.String()
}

func writeScores(b *strings.Builder, scores []service.UserScore) {
	if len(scores) == 0 {
		return
	}
	b.WriteString("\nscores:")
	for _, s := range scores {
		fmt.Fprintf(b, "\n%s: %.2f", s.ExternalID, s.Points)
	}
}
