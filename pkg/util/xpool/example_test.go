package xpool_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phray/xtask/pkg/util/xpool"
)

func Example() {
	pool, err := xpool.New(xpool.Config{
		Core:          2,
		Max:           4,
		QueueCapacity: 16,
		KeepAlive:     time.Minute,
		Policy:        xpool.CallerRuns,
	}, xpool.WithName("DEMO"))
	if err != nil {
		panic(err)
	}

	var wg sync.WaitGroup
	var sum atomic.Int64
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		_ = pool.Execute(xpool.TaskFunc(func() {
			defer wg.Done()
			sum.Add(int64(i))
		}))
	}
	wg.Wait()

	if err := pool.Close(); err != nil {
		panic(err)
	}
	fmt.Println("Sum:", sum.Load())

	// Output:
	// Sum: 55
}
