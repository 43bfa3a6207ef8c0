package xrun_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/phray/xtask/pkg/lifecycle/xrun"
)

func ExampleGroup() {
	g, _ := xrun.NewGroup(context.Background(), xrun.WithName("demo"))
	g.Go(xrun.WaitForDone())
	g.Go(func(context.Context) error { return errors.New("worker failed") })
	fmt.Println(g.Wait())
	// Output: worker failed
}
