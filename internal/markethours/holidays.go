package markethours

import "time"

// Mainland exchange holidays for 2026 (both SSE and SZSE close together).
// Golden Week style holidays span several consecutive days.
var exchangeHolidays2026 = []struct {
	month time.Month
	day   int
}{
	{time.January, 1},    // New Year's Day
	{time.January, 2},    // New Year holiday
	{time.February, 16},  // Spring Festival
	{time.February, 17},  // Spring Festival
	{time.February, 18},  // Spring Festival
	{time.February, 19},  // Spring Festival
	{time.February, 20},  // Spring Festival
	{time.April, 6},      // Qingming Festival
	{time.May, 1},        // Labour Day
	{time.May, 4},        // Labour Day holiday
	{time.May, 5},        // Labour Day holiday
	{time.June, 19},      // Dragon Boat Festival
	{time.September, 25}, // Mid-Autumn Festival
	{time.October, 1},    // National Day
	{time.October, 2},    // National Day
	{time.October, 5},    // National Day holiday
	{time.October, 6},    // National Day holiday
	{time.October, 7},    // National Day holiday
	{time.October, 8},    // National Day holiday
}

// pre-compute for fast lookup
var holidaySet map[string]bool

func init() {
	holidaySet = make(map[string]bool, len(exchangeHolidays2026))
	for _, h := range exchangeHolidays2026 {
		holidaySet[dateKey(2026, h.month, h.day)] = true
	}
}

// IsHoliday returns true if the date (in CST) is an exchange holiday.
func IsHoliday(t time.Time) bool {
	cst := t.In(CST)
	return holidaySet[dateKey(cst.Year(), cst.Month(), cst.Day())]
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, CST).Format("2006-01-02")
}
