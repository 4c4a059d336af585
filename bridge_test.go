package gosched

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnterSyscallReturnsFnResult(t *testing.T) {
	rt := NewRuntime()
	var got any
	var err error

	rt.MainTask(func() {
		got, err = rt.EnterSyscall(func() (any, error) {
			return 99, nil
		})
	})
	rt.Run()

	require.NoError(t, err)
	assert.Equal(t, 99, got)
}

func TestEnterSyscallWrapsError(t *testing.T) {
	rt := NewRuntime()
	boom := errors.New("boom")
	var err error

	rt.MainTask(func() {
		_, err = rt.EnterSyscall(func() (any, error) {
			return nil, boom
		})
	})
	rt.Run()

	require.Error(t, err)
	var be *BridgeError
	assert.ErrorAs(t, err, &be)
	assert.ErrorIs(t, err, boom)
}

func TestEnterSyscallCapturesPanic(t *testing.T) {
	rt := NewRuntime()
	var err error

	rt.MainTask(func() {
		_, err = rt.EnterSyscall(func() (any, error) {
			panic("syscall exploded")
		})
	})
	require.NotPanics(t, func() { rt.Run() })

	require.Error(t, err)
	var be *BridgeError
	assert.ErrorAs(t, err, &be)
}

// TestSyscallDoesNotStallOtherTasks is spec scenario 6: a task blocked in
// EnterSyscall never blocks the scheduler from making progress on its
// peers — a cooperative yield loop on another task finishes first even
// though it was spawned second.
func TestSyscallDoesNotStallOtherTasks(t *testing.T) {
	rt := NewRuntime()
	var order []string

	rt.MainTask(func() {
		rt.Go(func() {
			_, err := rt.EnterSyscall(func() (any, error) {
				time.Sleep(50 * time.Millisecond)
				return nil, nil
			})
			require.NoError(t, err)
			order = append(order, "slow")
		})

		rt.Go(func() {
			for i := 0; i < 10; i++ {
				rt.YieldNow()
			}
			order = append(order, "fast")
		})
	})
	rt.Run()

	require.Len(t, order, 2)
	assert.Equal(t, "fast", order[0])
	assert.Equal(t, "slow", order[1])
}

func TestMultipleConcurrentSyscalls(t *testing.T) {
	rt := NewRuntime()
	results := make([]int, 3)

	rt.MainTask(func() {
		for i := 0; i < 3; i++ {
			i := i
			rt.Go(func() {
				v, err := rt.EnterSyscall(func() (any, error) {
					time.Sleep(time.Duration(10*(3-i)) * time.Millisecond)
					return i * i, nil
				})
				require.NoError(t, err)
				results[i] = v.(int)
			})
		}
	})
	rt.Run()

	assert.Equal(t, []int{0, 1, 4}, results)
}

func TestBridgeWorkerPoolGrowsUpToCap(t *testing.T) {
	rt := NewRuntime(WithBridgeCap(2))

	rt.MainTask(func() {
		for i := 0; i < 5; i++ {
			rt.Go(func() {
				_, _ = rt.EnterSyscall(func() (any, error) {
					time.Sleep(5 * time.Millisecond)
					return nil, nil
				})
			})
		}
	})
	rt.Run()

	assert.LessOrEqual(t, rt.bridge.NumWorkers(), 2)
}

func TestEnterSyscallOutsideTaskPanics(t *testing.T) {
	rt := NewRuntime()
	assert.Panics(t, func() {
		_, _ = rt.EnterSyscall(func() (any, error) { return nil, nil })
	})
}
