package schedule

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func TestVirtualRunsInDueOrder(t *testing.T) {
	v := NewVirtual(start)
	var got []string

	v.After(100*time.Millisecond, func() { got = append(got, "settle") })
	v.After(10*time.Millisecond, func() { got = append(got, "blur") })
	v.After(50*time.Millisecond, func() { got = append(got, "step") })
	v.After(0, func() { got = append(got, "immediate") })

	assert.Empty(t, got, "nothing runs before the clock moves")
	v.Advance(60 * time.Millisecond)
	assert.Equal(t, []string{"immediate", "blur", "step"}, got)
	assert.Equal(t, start.Add(60*time.Millisecond), v.Now())
	assert.Equal(t, 1, v.Pending())

	v.Flush()
	assert.Equal(t, []string{"immediate", "blur", "step", "settle"}, got)
	assert.Equal(t, start.Add(100*time.Millisecond), v.Now())
}

func TestVirtualSameInstantKeepsSchedulingOrder(t *testing.T) {
	v := NewVirtual(start)
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		v.After(10*time.Millisecond, func() { got = append(got, i) })
	}
	v.Advance(10 * time.Millisecond)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestVirtualStop(t *testing.T) {
	v := NewVirtual(start)
	ran := false
	timer := v.After(10*time.Millisecond, func() { ran = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports nothing prevented")
	v.Advance(time.Second)
	assert.False(t, ran)
	assert.Equal(t, 0, v.Pending())
}

func TestVirtualStopAfterFire(t *testing.T) {
	v := NewVirtual(start)
	timer := v.After(time.Millisecond, func() {})
	v.Advance(time.Millisecond)
	assert.False(t, timer.Stop())
}

func TestVirtualNestedScheduling(t *testing.T) {
	v := NewVirtual(start)
	var at []time.Duration

	v.After(10*time.Millisecond, func() {
		at = append(at, v.Now().Sub(start))
		v.After(50*time.Millisecond, func() {
			at = append(at, v.Now().Sub(start))
		})
	})

	v.Advance(100 * time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 60 * time.Millisecond}, at)
}

func TestLoopSerializesCallbacks(t *testing.T) {
	l := NewLoop(16, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	var mu sync.Mutex
	var got []string
	record := func(s string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, s)
		}
	}

	fired := make(chan struct{})
	l.After(5*time.Millisecond, func() {
		record("timer")()
		close(fired)
	})
	stopped := l.After(5*time.Millisecond, record("stopped"))
	require.True(t, stopped.Stop())
	require.NoError(t, l.Do(record("event")))

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	l.Close()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"event", "timer"}, got)
	assert.ErrorIs(t, l.Do(func() {}), ErrLoopClosed)
}

func TestLoopRecoversPanics(t *testing.T) {
	l := NewLoop(4, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	ok := make(chan struct{})
	require.NoError(t, l.Do(func() { panic("boom") }))
	require.NoError(t, l.Do(func() { close(ok) }))

	select {
	case <-ok:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after a panic")
	}

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
