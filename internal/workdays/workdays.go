// Package workdays считает длительность в рабочих часах: суббота и воскресенье
// исключаются целиком, праздники не учитываются.
package workdays

import (
	"math"
	"time"
)

// Hours возвращает количество рабочих часов между start и end,
// округлённое до двух знаков. Если одна из меток отсутствует или
// start >= end, возвращается 0.
func Hours(start, end *time.Time) float64 {
	if start == nil || end == nil {
		return 0
	}
	return Between(*start, *end)
}

// Between считает рабочие часы между двумя моментами.
func Between(start, end time.Time) float64 {
	if !start.Before(end) {
		return 0
	}

	// календарная прогулка ниже сравнивает полуночи, поэтому обе метки
	// должны жить в одном часовом поясе
	end = end.In(start.Location())

	start = skipWeekendForward(start)
	end = skipWeekendBackward(end)

	// после сдвига границ интервал мог схлопнуться (оба конца на выходных)
	if !start.Before(end) {
		return 0
	}

	var hours float64

	startDay := dateOf(start)
	endDay := dateOf(end)

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		if isWeekend(day) {
			continue
		}

		switch {
		case day.Equal(startDay) && day.Equal(endDay):
			hours += end.Sub(start).Hours()
		case day.Equal(startDay):
			hours += day.AddDate(0, 0, 1).Sub(start).Hours()
		case day.Equal(endDay):
			hours += end.Sub(day).Hours()
		default:
			hours += 24.0
		}
	}

	return round2(hours)
}

// skipWeekendForward переносит момент с выходных на ближайший понедельник 00:00.
func skipWeekendForward(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return dateOf(t).AddDate(0, 0, 2)
	case time.Sunday:
		return dateOf(t).AddDate(0, 0, 1)
	default:
		return t
	}
}

// skipWeekendBackward переносит момент с выходных на пятницу 23:59:59.
func skipWeekendBackward(t time.Time) time.Time {
	var friday time.Time
	switch t.Weekday() {
	case time.Saturday:
		friday = dateOf(t).AddDate(0, 0, -1)
	case time.Sunday:
		friday = dateOf(t).AddDate(0, 0, -2)
	default:
		return t
	}
	return friday.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
