package main

import (
	"context"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/pkg/inspect"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

func inspectCmd(env *runtimeEnv) *cobra.Command {
	var (
		port     int
		host     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the live cell inspector",
		Long: `Serve the HTTP and WebSocket inspector over a set of sample cells
that a background goroutine keeps updating.

Endpoints:
  /cells         current value of every cell
  /ws/{name}     WebSocket stream of one cell
  /scopes        scope tree snapshot
  /metrics       Prometheus metrics

Examples:
  reactive inspect
  reactive inspect --port=9090 --interval=100ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return newUsageError("--interval must be positive")
			}
			if port > 0 {
				env.cfg.Inspect.Port = port
			}
			if host != "" {
				env.cfg.Inspect.Host = host
			}
			if err := env.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runInspect(ctx, cmd.OutOrStdout(), env, interval)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from reactive.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from reactive.json)")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Update interval of the sample cells")

	return cmd
}

// sampleCells is the set of cells the inspector command serves.
type sampleCells struct {
	root   *scope.Scope
	ticks  *reactive.Dynamic[int]
	clock  *reactive.Dynamic[string]
	parity *reactive.Dynamic[string]
}

func newSampleCells(tree *scope.Tree, srv *inspect.Server) (*sampleCells, error) {
	root := tree.NewRoot("inspector")
	ticker := root.NewChild("ticker")

	ticks := scope.NewDynamic(ticker, 0, reactive.WithName("ticks"))
	clock := scope.NewDynamic(ticker, time.Now().Format(time.TimeOnly), reactive.WithName("clock"))
	parity := reactive.MapEachUnique(ticks, func(n int) string {
		if n%2 == 0 {
			return "even"
		}
		return "odd"
	}, reactive.WithName("parity"))
	ticker.Own(parity)

	for _, err := range []error{
		inspect.Register(srv, ticks),
		inspect.Register(srv, clock),
		inspect.Register(srv, parity),
	} {
		if err != nil {
			return nil, err
		}
	}
	return &sampleCells{root: root, ticks: ticks, clock: clock, parity: parity}, nil
}

func (c *sampleCells) tick(now time.Time) {
	reactive.Increment(c.ticks)
	c.clock.Set(now.Format(time.TimeOnly))
}

// close releases the caller handles and tears the scopes down.
func (c *sampleCells) close() {
	c.ticks.Release()
	c.clock.Release()
	for _, child := range c.root.Children() {
		child.Close()
	}
	c.root.Close()
}

func runInspect(ctx context.Context, out io.Writer, env *runtimeEnv, interval time.Duration) error {
	tree := scope.NewTree(scope.WithObserver(env.observer), scope.WithLogger(env.logger))
	srv := inspect.New(
		inspect.WithTree(tree),
		inspect.WithGatherer(env.registry),
		inspect.WithLogger(env.logger),
	)

	cells, err := newSampleCells(tree, srv)
	if err != nil {
		return err
	}

	tickCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case now := <-t.C:
				cells.tick(now)
			case <-tickCtx.Done():
				return
			}
		}
	}()

	addr := env.cfg.InspectAddress()
	success(out, "inspector on http://%s", addr)
	info(out, "watch a cell: ws://%s/ws/ticks", addr)
	err = srv.ListenAndServe(ctx, addr)

	cancel()
	wg.Wait()
	cells.close()
	return err
}
