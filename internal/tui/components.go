package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"pocket-signal-pro/internal/domain"
)

// FormatUser renders one roster row.
func FormatUser(u domain.UserRecord) string {
	state := StateGuestStyle
	switch u.State {
	case domain.StatePending:
		state = StatePendingStyle
	case domain.StateVerified:
		state = StateVerifiedStyle
	}

	name := u.DisplayName
	if name == "" {
		name = "(unnamed)"
	}
	if len(name) > 18 {
		name = name[:18]
	}

	ref := u.SubmittedReference
	if ref == "" {
		ref = "-"
	}

	return fmt.Sprintf("%-12d %-18s %s  %-12s %s",
		u.ID,
		name,
		state.Render(fmt.Sprintf("%-8s", u.State)),
		ref,
		SubtextStyle.Render(u.FirstSeenAt.Format("02 Jan 15:04")),
	)
}

// FormatSignal renders a generated signal as a single line.
func FormatSignal(s domain.Signal) string {
	dirStyle := DirectionSellStyle
	if s.Direction == domain.DirectionBuy {
		dirStyle = DirectionBuyStyle
	}

	return fmt.Sprintf("%-14s %-7s %s  %.1f%%  %s",
		s.Instrument,
		s.Duration,
		dirStyle.Render(strings.ToUpper(string(s.Direction))),
		s.Confidence,
		SubtextStyle.Render(s.Timestamp.Format(time.RFC822)),
	)
}

// RenderConfidenceBar renders an ASCII bar scaled to a 0-100 confidence.
func RenderConfidenceBar(confidence float64, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	filled := int(math.Round(confidence / 100 * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	style := ConfidenceMidStyle
	if confidence >= 85 {
		style = ConfidenceHighStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%s %.1f%%", bar, confidence)
}

// RenderStateSummary renders per-state roster counts on one line.
func RenderStateSummary(users []domain.UserRecord) string {
	var guests, pending, verified int
	for _, u := range users {
		switch u.State {
		case domain.StatePending:
			pending++
		case domain.StateVerified:
			verified++
		default:
			guests++
		}
	}
	return fmt.Sprintf("%s  %s  %s",
		StateGuestStyle.Render(fmt.Sprintf("guest %d", guests)),
		StatePendingStyle.Render(fmt.Sprintf("pending %d", pending)),
		StateVerifiedStyle.Render(fmt.Sprintf("verified %d", verified)),
	)
}
