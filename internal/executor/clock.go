package executor

import "time"

// runClock — часы одного run.
// Каждое следующее значение строго больше предыдущего,
// поэтому записи журнала упорядочены по времени даже при грубом таймере.
type runClock struct {
	now  func() time.Time
	last time.Time
}

func newRunClock(now func() time.Time) *runClock {
	return &runClock{now: now}
}

// Next возвращает следующую отметку времени.
func (c *runClock) Next() time.Time {
	t := c.now()
	if !c.last.IsZero() && !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}
