package main

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

type demoOptions struct {
	writers   int
	writes    int
	readDelay time.Duration
}

type demoResult struct {
	count      int
	generation reactive.Generation
	received   int
	last       int
	coalesced  uint64
	evenFlips  int64
	celsius    float64
}

func demoCmd(env *runtimeEnv) *cobra.Command {
	opts := demoOptions{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run concurrent writers against a shared cell",
		Long: `Run background writers that increment a shared counter while a slow
reader follows a derived value through a stream.

The reader only ever sees the latest value; generations it could not keep
up with are reported as coalesced. Every cell lives in a scope that is
torn down bottom-up at the end.

Examples:
  reactive demo
  reactive demo --writers=8 --writes=10000
  reactive demo --read-delay=5ms --log-level=debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.writers < 1 || opts.writes < 0 {
				return newUsageError("--writers must be at least 1 and --writes not negative")
			}
			_, err := runDemo(cmd.Context(), cmd.OutOrStdout(), env, opts)
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.writers, "writers", "w", 4, "Number of writer goroutines")
	cmd.Flags().IntVarP(&opts.writes, "writes", "n", 1000, "Increments per writer")
	cmd.Flags().DurationVar(&opts.readDelay, "read-delay", time.Millisecond, "Time the reader spends on each value")

	return cmd
}

func runDemo(ctx context.Context, out io.Writer, env *runtimeEnv, opts demoOptions) (demoResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var res demoResult

	tree := scope.NewTree(scope.WithObserver(env.observer), scope.WithLogger(env.logger))
	app := tree.NewRoot("app")
	counter := app.NewChild("counter")

	count := scope.NewDynamic(counter, 0, reactive.WithName("count"))
	doubled := reactive.MapEach(count, func(n int) int { return n * 2 }, reactive.WithName("doubled"))
	counter.Own(doubled)
	even := reactive.MapEachUnique(count, func(n int) bool { return n%2 == 0 }, reactive.WithName("even"))
	counter.Own(even)

	var flips atomic.Int64
	counter.Track(even.ForEach(func(bool) { flips.Add(1) }))

	r := doubled.CreateReader()
	defer r.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for v := range r.Stream(ctx) {
			res.received++
			res.last = v
			time.Sleep(opts.readDelay)
		}
	}()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < opts.writers; i++ {
		wg.Add(1)
		count.WithClone(func(h *reactive.Dynamic[int]) {
			go func() {
				defer wg.Done()
				defer h.Release()
				for j := 0; j < opts.writes; j++ {
					reactive.Increment(h)
				}
			}()
		})
	}
	wg.Wait()
	took := time.Since(start)

	res.count = count.Get()
	res.generation = count.Generation()
	count.Release()

	// Two-way projection: writing Fahrenheit stores Celsius.
	celsius := scope.NewDynamic(app, 20.0, reactive.WithName("celsius"))
	fahrenheit := reactive.Linked(celsius,
		func(c float64) float64 { return c*9/5 + 32 },
		func(f float64) float64 { return (f - 32) * 5 / 9 },
		reactive.WithName("fahrenheit"),
	)
	app.Own(fahrenheit)
	fahrenheit.Set(212)
	res.celsius = celsius.Get()
	celsius.Release()

	// Closing the counter scope drops the last handles, which ends the stream.
	counter.Close()
	select {
	case <-done:
	case <-ctx.Done():
		return demoResult{}, ctx.Err()
	}
	res.coalesced = r.Coalesced()
	res.evenFlips = flips.Load()
	app.Close()

	success(out, "%d writers × %d increments in %s", opts.writers, opts.writes, took.Round(time.Microsecond))
	info(out, "count      = %d at %s", res.count, res.generation)
	info(out, "reader saw = %d values, last %d, %d generations coalesced", res.received, res.last, res.coalesced)
	info(out, "even flips = %d", res.evenFlips)
	info(out, "212°F      = %.1f°C", res.celsius)
	if tree.Len() != 0 {
		warn(out, "%d scopes left open", tree.Len())
	}
	return res, nil
}
