package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	rerrors "github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/scope"
)

func treeCmd(env *runtimeEnv) *cobra.Command {
	var violate bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Build a sample scope tree and tear it down",
		Long: `Build a small widget scope tree with owned cells, print it, then
close it bottom-up.

With --violate the parent is closed before its children first, showing
the E201 teardown error, before the tree is closed correctly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd.OutOrStdout(), env, violate)
		},
	}

	cmd.Flags().BoolVar(&violate, "violate", false, "Close a parent before its children first")

	return cmd
}

func buildSampleTree(tree *scope.Tree) *scope.Scope {
	window := tree.NewRoot("window", scope.WithName("main"))

	sidebar := window.NewChild("sidebar")
	list := sidebar.NewChild("list")
	selected := scope.NewDynamic(list, 0, reactive.WithName("selected"))
	for i := range 3 {
		item := list.NewChild("item", scope.WithName(fmt.Sprintf("item-%d", i)))
		active := reactive.MapEach(selected, func(sel int) bool { return sel == i })
		item.Own(active)
	}
	selected.Release()

	content := window.NewChild("content")
	editor := content.NewChild("editor")
	text := scope.NewDynamic(editor, "", reactive.WithName("text"))
	editor.Track(text.ForEach(func(string) {}))
	text.Release()

	return window
}

func runTree(out io.Writer, env *runtimeEnv, violate bool) error {
	tree := scope.NewTree(scope.WithObserver(env.observer), scope.WithLogger(env.logger))
	window := buildSampleTree(tree)

	tree.Walk(func(info scope.Info) bool {
		label := info.Widget
		if info.Name != "" {
			label += " (" + info.Name + ")"
		}
		fmt.Fprintf(out, "%s%s  [%s] cells=%d tracked=%d\n",
			strings.Repeat("  ", info.Depth), label, info.ID, info.Cells, info.Tracked)
		return true
	})

	if violate {
		if err := closeRecovering(window); err != nil {
			rerrors.Fprint(out, err)
		}
	}

	open := tree.Len()
	tree.Close()
	success(out, "closed %d scopes bottom-up", open-tree.Len())
	return nil
}

// closeRecovering closes s and turns a teardown panic into an error.
func closeRecovering(s *scope.Scope) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok && errors.Is(e, scope.ErrChildrenAlive) {
			err = e
			return
		}
		panic(r)
	}()
	s.Close()
	return nil
}
