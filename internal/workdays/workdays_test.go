package workdays_test

import (
	"testing"
	"time"

	"pr-velocity-service/internal/workdays"

	"github.com/stretchr/testify/assert"
)

// 2024-01-01 — понедельник; все даты января 2024 удобно считать от него.
func jan(day, hour, minute int) time.Time {
	return time.Date(2024, time.January, day, hour, minute, 0, 0, time.UTC)
}

func TestHours_NilInputs(t *testing.T) {
	at := jan(8, 9, 0)

	assert.Equal(t, 0.0, workdays.Hours(nil, nil))
	assert.Equal(t, 0.0, workdays.Hours(&at, nil))
	assert.Equal(t, 0.0, workdays.Hours(nil, &at))
}

func TestBetween_ZeroAndInverted(t *testing.T) {
	at := jan(8, 9, 0)

	assert.Equal(t, 0.0, workdays.Between(at, at))
	assert.Equal(t, 0.0, workdays.Between(jan(9, 12, 0), jan(8, 12, 0)))
}

func TestBetween_SameDay(t *testing.T) {
	// Mon 09:00 → Mon 17:00
	got := workdays.Between(jan(8, 9, 0), jan(8, 17, 0))
	assert.InDelta(t, 8.0, got, 0.001)
}

func TestBetween_WeekendExcluded(t *testing.T) {
	// Fri 09:00 → Mon 17:00: пятница 15ч + понедельник 17ч
	got := workdays.Between(jan(5, 9, 0), jan(8, 17, 0))
	assert.InDelta(t, 32.0, got, 0.001)
}

func TestBetween_StartOnWeekend(t *testing.T) {
	// Sat 09:00 → Tue 17:00: старт переносится на понедельник 00:00
	got := workdays.Between(jan(6, 9, 0), jan(9, 17, 0))
	assert.InDelta(t, 41.0, got, 0.001)
}

func TestBetween_EndOnWeekend(t *testing.T) {
	// Thu 09:00 → Sat 17:00: конец переносится на пятницу 23:59:59
	got := workdays.Between(jan(4, 9, 0), jan(6, 17, 0))
	assert.InDelta(t, 39.0, got, 0.001)
}

func TestBetween_EntirelyWithinWeekend(t *testing.T) {
	// Sat 09:00 → Sun 17:00: после сдвига границ интервал пуст
	got := workdays.Between(jan(6, 9, 0), jan(7, 17, 0))
	assert.Equal(t, 0.0, got)
}

func TestBetween_FullWeek(t *testing.T) {
	// Mon 00:00 → следующий Mon 00:00: пять рабочих суток
	got := workdays.Between(jan(1, 0, 0), jan(8, 0, 0))
	assert.InDelta(t, 120.0, got, 0.001)
}

func TestBetween_Deterministic(t *testing.T) {
	start := jan(2, 10, 30)
	end := jan(12, 16, 45)

	first := workdays.Between(start, end)
	second := workdays.Between(start, end)

	assert.Equal(t, first, second)
	assert.Greater(t, first, 0.0)
}

func TestBetween_MixedLocations(t *testing.T) {
	// один и тот же момент в разных поясах дает одинаковый результат
	start := jan(8, 9, 0)
	endUTC := jan(8, 17, 0)
	endShifted := endUTC.In(time.FixedZone("UTC+3", 3*60*60))

	assert.Equal(t,
		workdays.Between(start, endUTC),
		workdays.Between(start, endShifted),
	)
}
