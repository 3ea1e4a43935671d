package steps

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Latency — симулированная задержка перед выполнением узла.
//
// Каждый узел перед работой ждёт случайное время из [Min, Max].
// Нулевая Latency не ждёт вовсе, но всё равно проверяет отмену контекста.
type Latency struct {
	Min time.Duration
	Max time.Duration
}

// NoLatency — задержка, которая не ждёт.
var NoLatency = Latency{}

// NewLatency создаёт Latency. Если maxDelay < minDelay, используется minDelay.
func NewLatency(minDelay, maxDelay time.Duration) Latency {
	if minDelay < 0 {
		minDelay = 0
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return Latency{Min: minDelay, Max: maxDelay}
}

// Duration возвращает длительность очередной задержки.
func (l Latency) Duration() time.Duration {
	if l.Max <= l.Min {
		return l.Min
	}
	return l.Min + rand.N(l.Max-l.Min+1)
}

// Wait приостанавливает выполнение на Duration().
// Поддерживает отмену через context.
func (l Latency) Wait(ctx context.Context) error {
	duration := l.Duration()
	if duration <= 0 {
		return checkContext(ctx)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrStepCancelled, ctx.Err())
	case <-timer.C:
		return nil
	}
}

// String возвращает представление для логов.
func (l Latency) String() string {
	return fmt.Sprintf("%s-%s", l.Min, l.Max)
}
