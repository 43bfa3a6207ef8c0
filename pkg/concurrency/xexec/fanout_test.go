package xexec

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileReq struct{ userID string }

type profileResp struct {
	mu     sync.Mutex
	name   string
	orders int
}

func TestFanOut(t *testing.T) {
	d := newTestDispatcher(t)
	resp := &profileResp{}

	err := FanOut(context.Background(), d, Common, "profile", profileReq{userID: "u1"}, resp,
		Step[profileReq, *profileResp]{Name: "name", Fn: func(_ context.Context, req profileReq, r *profileResp) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.name = "user-" + req.userID
			return nil
		}},
		Step[profileReq, *profileResp]{Name: "orders", Fn: func(_ context.Context, _ profileReq, r *profileResp) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.orders = 3
			return nil
		}},
		Step[profileReq, *profileResp]{Name: "skipped"},
	)
	require.NoError(t, err)
	assert.Equal(t, "user-u1", resp.name)
	assert.Equal(t, 3, resp.orders)
}

func TestFanOut_Errors(t *testing.T) {
	d := newTestDispatcher(t)
	resp := &profileResp{}

	err := FanOut[profileReq, *profileResp](context.Background(), d, Common, "", profileReq{}, resp)
	assert.ErrorIs(t, err, ErrEmptyDesc)

	err = FanOut[profileReq, *profileResp](context.Background(), d, Common, "profile", profileReq{}, resp)
	assert.ErrorIs(t, err, ErrEmptySteps)

	boom := errors.New("boom")
	err = FanOut(context.Background(), d, Common, "profile", profileReq{}, resp,
		Step[profileReq, *profileResp]{Fn: func(context.Context, profileReq, *profileResp) error { return boom }})
	var ee *ExecutionError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "profile", ee.Cause.Desc)
	assert.ErrorIs(t, err, boom)
}
