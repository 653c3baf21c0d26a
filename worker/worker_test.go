package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStopAndJoinStopsLoop(t *testing.T) {
	iterations := 0
	w := Spawn("test", 0, func(w *Worker) {
		for w.Continue() {
			iterations++
			time.Sleep(time.Millisecond)
		}
	})

	time.Sleep(20 * time.Millisecond)
	w.Stop()
	require.NoError(t, w.Join(50, 10*time.Millisecond))
	require.Greater(t, iterations, 0)
}

func TestJoinTimesOutIfWorkerIgnoresFlag(t *testing.T) {
	block := make(chan struct{})
	w := Spawn("stuck", 0, func(w *Worker) {
		<-block
	})
	defer close(block)

	err := w.Join(2, 5*time.Millisecond)
	require.Error(t, err)
}
