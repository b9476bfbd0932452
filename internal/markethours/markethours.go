// Package markethours knows the A-share trading calendar: the Shanghai
// and Shenzhen exchanges trade Monday to Friday in two sessions,
// 9:30-11:30 and 13:00-15:00 China Standard Time, closed on public
// holidays.
package markethours

import (
	"fmt"
	"time"
)

// CST is China Standard Time (UTC+8). Both exchanges run on it.
var CST = time.FixedZone("CST", 8*3600)

// Session boundaries in minutes from midnight, CST.
const (
	morningOpen    = 9*60 + 30
	morningClose   = 11*60 + 30
	afternoonOpen  = 13 * 60
	afternoonClose = 15 * 60
)

// IsOpen returns true if t falls within a trading session
// (9:30-11:30 or 13:00-15:00 CST, Mon-Fri, excluding holidays).
func IsOpen(t time.Time) bool {
	cst := t.In(CST)
	if !IsTradingDay(cst) {
		return false
	}
	hm := cst.Hour()*60 + cst.Minute()
	return (hm >= morningOpen && hm < morningClose) ||
		(hm >= afternoonOpen && hm < afternoonClose)
}

// IsWeekday returns true if t is Mon-Fri.
func IsWeekday(t time.Time) bool {
	wd := t.In(CST).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	cst := t.In(CST)
	return IsWeekday(cst) && !IsHoliday(cst)
}

// NextOpen returns the start of the next trading session. Within the
// lunch break that is today's afternoon session.
func NextOpen(t time.Time) time.Time {
	cst := t.In(CST)

	if IsTradingDay(cst) {
		hm := cst.Hour()*60 + cst.Minute()
		if hm < morningOpen {
			return sessionTime(cst, morningOpen)
		}
		if hm >= morningClose && hm < afternoonOpen {
			return sessionTime(cst, afternoonOpen)
		}
	}

	d := cst.AddDate(0, 0, 1)
	for i := 0; i < 30; i++ { // holidays plus weekends never stack deeper
		if IsTradingDay(d) {
			return sessionTime(d, morningOpen)
		}
		d = d.AddDate(0, 0, 1)
	}
	return sessionTime(cst.AddDate(0, 0, 1), morningOpen)
}

// TodayClose returns today's final close (15:00 CST).
func TodayClose(t time.Time) time.Time {
	cst := t.In(CST)
	return sessionTime(cst, afternoonClose)
}

// TimeUntilClose returns the duration until today's final close, or 0 if
// the market is already past it.
func TimeUntilClose(t time.Time) time.Duration {
	d := TodayClose(t).Sub(t.In(CST))
	if d < 0 {
		return 0
	}
	return d
}

// StatusString returns a human-readable market status.
func StatusString(t time.Time) string {
	if IsOpen(t) {
		return fmt.Sprintf("market open, closes in %s", fmtDur(TimeUntilClose(t)))
	}
	next := NextOpen(t)
	return fmt.Sprintf("market closed, opens %s %s (%s)",
		next.Weekday().String()[:3], next.Format("15:04"), fmtDur(next.Sub(t)))
}

func sessionTime(day time.Time, minutes int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, CST)
}

func fmtDur(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
