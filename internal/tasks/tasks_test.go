package tasks

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTask struct {
	name    string
	value   int
	err     error
	release chan struct{}
}

func (t stubTask) Name() string {
	return t.name
}

func (t stubTask) Perform(ctx context.Context) (int, error) {
	if t.release != nil {
		<-t.release
	}
	return t.value, t.err
}

type panicTask struct{}

func (t panicTask) Name() string {
	return "panicky"
}

func (t panicTask) Perform(ctx context.Context) (int, error) {
	panic("unexpected geometry")
}

func TestSpawnDeliversOutcome(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	Spawn[int](context.Background(), runner, mb, stubTask{name: "answer", value: 42})
	runner.Wait()

	outcomes := mb.Drain()
	require.Len(t, outcomes, 1)
	assert.Equal(t, "answer", outcomes[0].Name)
	assert.Equal(t, 42, outcomes[0].Value)
	assert.NoError(t, outcomes[0].Err)
}

func TestSpawnDeliversFailure(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	taskErr := errors.New("boom")
	Spawn[int](context.Background(), runner, mb, stubTask{name: "broken", err: taskErr})
	runner.Wait()

	outcomes := mb.Drain()
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, taskErr)
}

func TestDrainEmptyMailbox(t *testing.T) {
	mb := NewMailbox[int]()
	assert.Empty(t, mb.Drain())
	assert.False(t, mb.Pending())
}

func TestDrainReturnsOutcomesInEnqueueOrder(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	for i := 0; i < 5; i++ {
		Spawn[int](context.Background(), runner, mb, stubTask{name: fmt.Sprintf("task-%d", i), value: i})
		runner.Wait()
	}

	outcomes := mb.Drain()
	require.Len(t, outcomes, 5)
	for i, o := range outcomes {
		assert.Equal(t, i, o.Value)
	}
}

func TestDrainOnlyReturnsNewOutcomes(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	Spawn[int](context.Background(), runner, mb, stubTask{name: "first", value: 1})
	runner.Wait()
	require.Len(t, mb.Drain(), 1)

	Spawn[int](context.Background(), runner, mb, stubTask{name: "second", value: 2})
	runner.Wait()

	outcomes := mb.Drain()
	require.Len(t, outcomes, 1)
	assert.Equal(t, 2, outcomes[0].Value)
}

func TestBurstBetweenDrainsLosesNothing(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	const burst = 500
	for i := 0; i < burst; i++ {
		Spawn[int](context.Background(), runner, mb, stubTask{name: "flood", value: i})
	}
	runner.Wait()

	outcomes := mb.Drain()
	require.Len(t, outcomes, burst)

	seen := make(map[int]bool, burst)
	for _, o := range outcomes {
		seen[o.Value] = true
	}
	assert.Len(t, seen, burst)
}

func TestPanickingTaskOnlyLosesItsOwnOutcome(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	Spawn[int](context.Background(), runner, mb, panicTask{})
	Spawn[int](context.Background(), runner, mb, stubTask{name: "healthy", value: 7})
	runner.Wait()

	outcomes := mb.Drain()
	require.Len(t, outcomes, 1)
	assert.Equal(t, "healthy", outcomes[0].Name)
	assert.Equal(t, 0, runner.InFlight())
}

func TestInFlightTracksRunningTasks(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	release := make(chan struct{})
	Spawn[int](context.Background(), runner, mb, stubTask{name: "slow", value: 1, release: release})

	assert.Equal(t, 1, runner.InFlight())
	assert.False(t, mb.Pending())

	close(release)
	runner.Wait()

	assert.Equal(t, 0, runner.InFlight())
	assert.True(t, mb.Pending())
}

func TestConsumerDoesNotBlockOnSlowTask(t *testing.T) {
	runner := NewRunner(nil)
	mb := NewMailbox[int]()

	release := make(chan struct{})
	Spawn[int](context.Background(), runner, mb, stubTask{name: "slow", value: 1, release: release})
	Spawn[int](context.Background(), runner, mb, stubTask{name: "fast", value: 2})

	// only the finished task's outcome is visible at drain time
	assert.Eventually(t, func() bool {
		return mb.Pending()
	}, time.Second, time.Millisecond)

	outcomes := mb.Drain()
	require.Len(t, outcomes, 1)
	assert.Equal(t, 2, outcomes[0].Value)

	close(release)
	runner.Wait()
}
