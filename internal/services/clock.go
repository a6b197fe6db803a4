package services

import "time"

// Clock - источник текущего времени (подменяется в тестах)
type Clock interface {
	Now() time.Time
}

// ClockFunc позволяет использовать функцию как Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock - реальное время
var SystemClock Clock = ClockFunc(time.Now)
