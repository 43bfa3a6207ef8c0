package xmetrics_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/phray/xtask/pkg/observability/xmetrics"
)

func ExampleStart() {
	obs, err := xmetrics.NewOTelObserver()
	if err != nil {
		panic(err)
	}

	work := func(context.Context) error { return errors.New("boom") }

	ctx, span := xmetrics.Start(context.Background(), obs, xmetrics.SpanOptions{
		Component: "xexec",
		Operation: "task",
		Kind:      xmetrics.KindConsumer,
		Attrs:     []xmetrics.Attr{xmetrics.String("pool", "COMMON")},
	})
	err = work(ctx)
	span.End(xmetrics.Result{Err: err})

	fmt.Println(err)
	// Output: boom
}
