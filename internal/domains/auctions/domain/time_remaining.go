package domain

import (
	"fmt"
	"math"
	"time"
)

// EndedLabel is shown once an auction has closed.
const EndedLabel = "Auction ended"

const (
	minutesPerDay   = 24 * 60
	minutesPerMonth = 30 * minutesPerDay
)

// TimeRemaining is the time left until an auction closes.
type TimeRemaining struct {
	Ended      bool
	NoDeadline bool
	Duration   time.Duration
}

// TimeRemainingAt computes the time left at now.
func (a *Artwork) TimeRemainingAt(now time.Time) TimeRemaining {
	if a.AuctionEndDate == nil {
		return TimeRemaining{NoDeadline: true}
	}
	if a.Closed(now) {
		return TimeRemaining{Ended: true}
	}
	return TimeRemaining{Duration: a.AuctionEndDate.Sub(now)}
}

// Humanize renders the remaining time as "in about 2 hours" or EndedLabel.
// An open-ended auction renders as an empty string.
func (t TimeRemaining) Humanize() string {
	switch {
	case t.Ended:
		return EndedLabel
	case t.NoDeadline:
		return ""
	}
	return "in " + distance(t.Duration)
}

func distance(d time.Duration) string {
	minutes := int(math.Round(d.Seconds() / 60))
	switch {
	case minutes == 0:
		return "less than a minute"
	case minutes < 2:
		return "1 minute"
	case minutes < 45:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes < 90:
		return "about 1 hour"
	case minutes < minutesPerDay:
		return fmt.Sprintf("about %d hours", int(math.Round(float64(minutes)/60)))
	case minutes < 42*60:
		return "1 day"
	case minutes < minutesPerMonth:
		return fmt.Sprintf("%d days", int(math.Round(float64(minutes)/minutesPerDay)))
	case minutes < 2*minutesPerMonth:
		return plural("about %d month", int(math.Round(float64(minutes)/minutesPerMonth)))
	}
	months := minutes / minutesPerMonth
	if months < 12 {
		return plural("%d month", months)
	}
	years, rest := months/12, months%12
	switch {
	case rest < 3:
		return plural("about %d year", years)
	case rest < 9:
		return plural("over %d year", years)
	default:
		return plural("almost %d year", years+1)
	}
}

func plural(format string, n int) string {
	s := fmt.Sprintf(format, n)
	if n != 1 {
		s += "s"
	}
	return s
}
