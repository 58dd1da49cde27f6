package metrics

import (
	"fmt"
	"time"
)

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time, loc *time.Location) civilDate {
	y, m, d := t.In(loc).Date()
	return civilDate{y, m, d}
}

func (c civilDate) prev() civilDate {
	y, m, d := time.Date(c.year, c.month, c.day-1, 12, 0, 0, 0, time.UTC).Date()
	return civilDate{y, m, d}
}

func hourOf(t time.Time, loc *time.Location) int { return t.In(loc).Hour() }

// hourLabel formats 0..23 on a 12-hour clock: 0 -> "12 AM", 12 -> "12 PM".
func hourLabel(h int) string {
	h = ((h % 24) + 24) % 24
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d %s", h12, suffix)
}

// windowLabel labels the two-hour window starting at h, e.g. 7 -> "7 AM-9 AM".
// 22 ends at midnight: "10 PM-12 AM".
func windowLabel(h int) string {
	return hourLabel(h) + "-" + hourLabel(h+2)
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
