package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestTimer_CountsDownToZero(t *testing.T) {
	tickers := &manualTickers{}
	done := make(chan struct{})
	timer := NewRestTimer(tickers.factory, func() { close(done) })
	defer timer.Stop()

	timer.Start(3)
	require.True(t, timer.Active())
	require.Equal(t, 3, timer.Remaining())

	require.True(t, tickers.tick())
	require.Eventually(t, func() bool { return timer.Remaining() == 2 }, time.Second, time.Millisecond)
	require.True(t, tickers.tick())
	require.Eventually(t, func() bool { return timer.Remaining() == 1 }, time.Second, time.Millisecond)
	require.True(t, timer.Active())
	require.True(t, tickers.tick())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("rest timer did not finish after 3 ticks")
	}
	assert.Equal(t, 0, timer.Remaining())
	assert.False(t, timer.Active())

	// the goroutine is gone, more ticks are not consumed
	assert.False(t, tickers.tick())
	assert.Equal(t, 0, timer.Remaining())
}

func TestRestTimer_StopClearsImmediately(t *testing.T) {
	tickers := &manualTickers{}
	timer := NewRestTimer(tickers.factory, func() { t.Error("onDone must not run after Stop") })

	timer.Start(90)
	require.True(t, tickers.tick())
	timer.Stop()

	assert.False(t, timer.Active())
	assert.Equal(t, 0, timer.Remaining())
	timer.Stop()
}

func TestRestTimer_RestartReplacesCountdown(t *testing.T) {
	tickers := &manualTickers{}
	timer := NewRestTimer(tickers.factory, nil)
	defer timer.Stop()

	timer.Start(5)
	first := tickers.last()
	timer.Start(2)

	assert.NotSame(t, first, tickers.last())
	assert.Equal(t, 2, timer.Remaining())
	select {
	case <-first.stopped:
	default:
		t.Fatal("first ticker was not stopped")
	}
}

func TestRestTimer_NonPositiveDurationStaysInactive(t *testing.T) {
	tickers := &manualTickers{}
	timer := NewRestTimer(tickers.factory, nil)

	timer.Start(0)
	timer.Start(-4)

	assert.False(t, timer.Active())
	assert.Equal(t, 0, timer.Remaining())
	assert.Nil(t, tickers.last())
}

func TestRestTimer_RealTicker(t *testing.T) {
	done := make(chan struct{})
	timer := NewRestTimer(nil, func() { close(done) })

	timer.Start(1)
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		timer.Stop()
		t.Fatal("real ticker did not finish a 1 second rest")
	}
	assert.Equal(t, 0, timer.Remaining())
}
