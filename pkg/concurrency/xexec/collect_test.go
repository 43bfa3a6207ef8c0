package xexec

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/phray/xtask/pkg/util/xerrcode"
)

func squareTasks(n int, delay func(i int) time.Duration) []*Task[int] {
	tasks := make([]*Task[int], n)
	for i := range n {
		tasks[i] = NewTask(context.Background(), "square", func(context.Context) (int, error) {
			time.Sleep(delay(i))
			return i * i, nil
		})
	}
	return tasks
}

func TestCollect_SubmissionOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockCollector[int, []int](ctrl)
	d := newTestDispatcher(t)

	// 结束顺序与提交顺序相反
	tasks := squareTasks(3, func(i int) time.Duration { return time.Duration(3-i) * 10 * time.Millisecond })
	gomock.InOrder(
		c.EXPECT().Init(),
		c.EXPECT().Fill(0),
		c.EXPECT().Fill(1),
		c.EXPECT().Fill(4),
		c.EXPECT().Get().Return([]int{0, 1, 4}),
	)

	got, err := Collect[int, []int](context.Background(), d, tasks, c, time.Second, Common, "ordered")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, got)
}

func TestCollect_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockCollector[int, []int](ctrl)
	d := newTestDispatcher(t)

	gate := make(chan struct{})
	slow := NewTask(context.Background(), "slow", func(context.Context) (int, error) {
		<-gate
		return 1, nil
	})
	c.EXPECT().Init()

	got, err := Collect[int, []int](context.Background(), d, []*Task[int]{slow}, c, 20*time.Millisecond, Common, "slow batch")
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "slow batch", te.Desc)
	assert.Equal(t, 20*time.Millisecond, te.Timeout)
	assert.Equal(t, xerrcode.Timeout, xerrcode.CodeOf(err))
	assert.Nil(t, got)

	close(gate)
	<-slow.Handle().Done()
}

func gatedTasks(n int, running *sync.WaitGroup, gate <-chan struct{}) []*Task[int] {
	tasks := make([]*Task[int], n)
	running.Add(n)
	for i := range n {
		tasks[i] = NewTask(context.Background(), "gated", func(context.Context) (int, error) {
			running.Done()
			<-gate
			return i * i, nil
		})
	}
	return tasks
}

func TestCollect_ContextCancelledStillFolds(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockCollector[int, []int](ctrl)
	d := newTestDispatcher(t)

	var running sync.WaitGroup
	gate := make(chan struct{})
	tasks := gatedTasks(3, &running, gate)
	gomock.InOrder(
		c.EXPECT().Init(),
		c.EXPECT().Fill(0),
		c.EXPECT().Fill(1),
		c.EXPECT().Fill(4),
		c.EXPECT().Get().Return([]int{0, 1, 4}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		running.Wait()
		cancel()
		time.Sleep(20 * time.Millisecond)
		close(gate)
	}()

	got, err := Collect[int, []int](ctx, d, tasks, c, 2*time.Second, Common, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, got)
	require.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestCollect_ContextCancelledHandleTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockCollector[int, []int](ctrl)
	d := newTestDispatcher(t)

	var running sync.WaitGroup
	gate := make(chan struct{})
	tasks := gatedTasks(1, &running, gate)
	c.EXPECT().Init()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Collect[int, []int](ctx, d, tasks, c, 30*time.Millisecond, Common, "still blocked")
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "still blocked", te.Desc)
	assert.Equal(t, 30*time.Millisecond, te.Timeout)
	assert.Nil(t, got)

	close(gate)
	<-tasks[0].Handle().Done()
}

func TestCollect_TaskFailure(t *testing.T) {
	d := newTestDispatcher(t)
	tasks := []*Task[int]{
		NewTask(context.Background(), "one", func(context.Context) (int, error) { return 1, nil }),
		NewTask(context.Background(), "two", func(context.Context) (int, error) { return 0, errors.New("two failed") }),
		NewTask(context.Background(), "three", func(context.Context) (int, error) { return 3, nil }),
	}

	got, err := Collect[int, []int](context.Background(), d, tasks, &SliceCollector[int]{}, time.Second, Common, "failing")
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "failing", ee.Desc)
	assert.Equal(t, "two", ee.Cause.Desc)
	assert.Nil(t, got)
	for _, task := range tasks {
		assert.Equal(t, StateFinalized, task.State())
	}
}

func TestCollect_Empty(t *testing.T) {
	d := newTestDispatcher(t)
	got, err := Collect[int, int](context.Background(), d, []*Task[int]{nil}, &CountCollector[int]{}, 0, Common, "empty")
	require.NoError(t, err)
	assert.Equal(t, 0, got)
	assert.Equal(t, 0, d.Registry().Len())
}

func TestCollect_NilCollector(t *testing.T) {
	d := newTestDispatcher(t)
	_, err := Collect[int, int](context.Background(), d, nil, nil, 0, Common, "nil")
	assert.ErrorIs(t, err, ErrNilCollector)
}

func TestCollect_DefaultTimeout(t *testing.T) {
	d := newTestDispatcher(t, WithDefaultTimeout(20*time.Millisecond))
	gate := make(chan struct{})
	slow := NewTask(context.Background(), "slow", func(context.Context) (int, error) {
		<-gate
		return 1, nil
	})

	_, err := Collect[int, int](context.Background(), d, []*Task[int]{slow}, &CountCollector[int]{}, 0, Common, "default")
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 20*time.Millisecond, te.Timeout)

	close(gate)
	<-slow.Handle().Done()
}

func TestCollectNamed(t *testing.T) {
	d := newTestDispatcher(t)
	tasks := squareTasks(4, func(int) time.Duration { return 0 })

	got, err := CollectNamed[int, int](context.Background(), d, tasks,
		NewFuncCollector(func() int { return 0 }, func(acc, v int) int { return acc + v }),
		time.Second, Common.Key, "sum")
	require.NoError(t, err)
	assert.Equal(t, 0+1+4+9, got)

	_, err = CollectNamed[int, int](context.Background(), d, nil, &CountCollector[int]{}, 0, "MISSING", "x")
	assert.ErrorIs(t, err, ErrUnknownPool)
}

func TestCollectors(t *testing.T) {
	s := &SliceCollector[string]{}
	s.Init()
	s.Fill("a")
	s.Fill("b")
	assert.Equal(t, []string{"a", "b"}, s.Get())

	m := &MapCollector[string, int]{}
	m.Init()
	m.Fill(map[string]int{"a": 1, "b": 2})
	m.Fill(map[string]int{"b": 3})
	assert.Equal(t, map[string]int{"a": 1, "b": 3}, m.Get())

	c := &CountCollector[error]{}
	c.Init()
	c.Fill(nil)
	c.Fill(nil)
	assert.Equal(t, 2, c.Get())
	c.Init()
	assert.Equal(t, 0, c.Get())

	f := NewFuncCollector[int, []int](nil, func(acc []int, v int) []int { return append(acc, v*2) })
	f.Init()
	f.Fill(1)
	f.Fill(2)
	assert.Equal(t, []int{2, 4}, f.Get())
}
