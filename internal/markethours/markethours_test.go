package markethours

import (
	"testing"
	"time"
)

func cstTime(month time.Month, day, hour, minute int) time.Time {
	return time.Date(2026, month, day, hour, minute, 0, 0, CST)
}

func TestIsOpen_Sessions(t *testing.T) {
	// 2026-03-04 is a Wednesday with no holiday.
	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before morning open", cstTime(time.March, 4, 9, 29), false},
		{"morning open", cstTime(time.March, 4, 9, 30), true},
		{"mid morning", cstTime(time.March, 4, 10, 45), true},
		{"lunch break", cstTime(time.March, 4, 12, 0), false},
		{"afternoon open", cstTime(time.March, 4, 13, 0), true},
		{"just before close", cstTime(time.March, 4, 14, 59), true},
		{"at close", cstTime(time.March, 4, 15, 0), false},
		{"saturday", cstTime(time.March, 7, 10, 0), false},
		{"sunday", cstTime(time.March, 8, 10, 0), false},
	}
	for _, tc := range cases {
		if got := IsOpen(tc.at); got != tc.want {
			t.Errorf("%s: IsOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsOpen_Holiday(t *testing.T) {
	// National Day falls on a Thursday in 2026.
	if IsOpen(cstTime(time.October, 1, 10, 0)) {
		t.Error("expected market closed on National Day")
	}
	if IsTradingDay(cstTime(time.October, 1, 10, 0)) {
		t.Error("expected National Day not to be a trading day")
	}
}

func TestNextOpen(t *testing.T) {
	// Before the morning session: today's morning open.
	next := NextOpen(cstTime(time.March, 4, 8, 0))
	if want := cstTime(time.March, 4, 9, 30); !next.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", next, want)
	}

	// During lunch: today's afternoon session.
	next = NextOpen(cstTime(time.March, 4, 12, 0))
	if want := cstTime(time.March, 4, 13, 0); !next.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", next, want)
	}

	// Friday after close: Monday morning.
	next = NextOpen(cstTime(time.March, 6, 16, 0))
	if want := cstTime(time.March, 9, 9, 30); !next.Equal(want) {
		t.Errorf("NextOpen = %v, want %v", next, want)
	}
}

func TestTimeUntilClose(t *testing.T) {
	d := TimeUntilClose(cstTime(time.March, 4, 14, 0))
	if d != time.Hour {
		t.Errorf("TimeUntilClose = %v, want %v", d, time.Hour)
	}
	if got := TimeUntilClose(cstTime(time.March, 4, 16, 0)); got != 0 {
		t.Errorf("TimeUntilClose after close = %v, want 0", got)
	}
}

func TestStatusString(t *testing.T) {
	if got := StatusString(cstTime(time.March, 4, 10, 0)); got == "" {
		t.Error("expected non-empty status while open")
	}
	if got := StatusString(cstTime(time.March, 7, 10, 0)); got == "" {
		t.Error("expected non-empty status while closed")
	}
}
