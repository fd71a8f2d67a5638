// Package reactive provides the reactive value graph: generation-tracked,
// concurrency-safe cells that carry state between background goroutines,
// context-aware consumers and a single-threaded UI tree.
//
// # Core Types
//
// Dynamic[T] is a shared, lock-protected cell:
//
//	count := reactive.New(0, reactive.WithName("count"))
//	count.Set(5)
//	count.Update(func(n int) int { return n + 1 })
//	value := count.Get()
//
// Every successful write advances the cell's Generation by exactly one.
// Subscribers registered with ForEach run after the lock is released, in
// registration order, once per generation:
//
//	sub := count.ForEach(func(n int) { fmt.Println("count is", n) })
//	defer sub.Cancel()
//
// Value[T] is either a constant or a Dynamic. Code that only reads takes a
// Value; code that writes or subscribes takes a *Dynamic.
//
// # Readers
//
// A Reader is a last-value cursor over a cell's generations. It reports only
// changes made after it was created and coalesces bursts of writes:
//
//	r := count.CreateReader()
//	defer r.Close()
//	for v := range r.All() {
//	    fmt.Println(v) // blocks between updates, ends once every handle is released
//	}
//
// Wait and Stream provide the same cursor to context-aware code.
//
// # Derived Values
//
// MapEach, MapEach2 and MapEach3 project one or more cells into a new cell.
// Reads recompute only when a source generation changed; source writes are
// forwarded so subscribers of a derived cell are notified like subscribers
// of a primary one. Linked builds a two-way projection that writes through
// to its source.
//
// # Thread Safety
//
// Each cell owns one mutex. Callbacks never run while it is held, and no
// operation holds two cell locks at once, so cells cannot deadlock against
// each other. Update runs its function under the lock: it must not touch
// the same cell.
package reactive
