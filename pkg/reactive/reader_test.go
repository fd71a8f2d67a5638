package reactive

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestReaderStartsAtCurrentGeneration(t *testing.T) {
	d := New(1)
	d.Set(2)

	r := d.CreateReader()
	defer r.Close()

	if r.HasUpdated() {
		t.Error("new reader should not report earlier writes")
	}
	if r.LastSeen() != 1 {
		t.Errorf("expected last seen 1, got %d", r.LastSeen())
	}

	d.Set(3)
	if !r.HasUpdated() {
		t.Error("reader should report a later write")
	}
	if r.Get() != 3 {
		t.Errorf("expected 3, got %d", r.Get())
	}
	if r.HasUpdated() {
		t.Error("Get should mark the generation as read")
	}
}

func TestReaderCoalescesRapidWrites(t *testing.T) {
	d := New(0)
	r := d.CreateReader()
	defer r.Close()

	for i := 1; i <= 100; i++ {
		d.Set(i)
	}

	v, ok := r.Next()
	if !ok {
		t.Fatal("expected an update")
	}
	if v != 100 {
		t.Errorf("expected only the final value 100, got %d", v)
	}
	if r.LastSeen() != 100 {
		t.Errorf("expected last seen 100, got %d", r.LastSeen())
	}
	if r.Coalesced() != 99 {
		t.Errorf("expected 99 coalesced generations, got %d", r.Coalesced())
	}
	if r.HasUpdated() {
		t.Error("nothing should remain unread")
	}
}

func TestReaderSlowConsumerSeesFinalValue(t *testing.T) {
	d := New(0)
	r := d.CreateReader()
	defer r.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	d.WithClone(func(h *Dynamic[int]) {
		go func() {
			defer wg.Done()
			for i := 1; i <= 100; i++ {
				h.Set(i)
			}
		}()
	})
	wg.Wait()

	v, ok := r.Next()
	if !ok || v != 100 {
		t.Errorf("expected (100, true), got (%d, %v)", v, ok)
	}
}

func TestReaderMonotonic(t *testing.T) {
	d := New(0)
	r := d.CreateReader()
	defer r.Close()

	writer := d.Clone()
	d.Release()

	go func() {
		defer writer.Release()
		for i := 1; i <= 1000; i++ {
			writer.Set(i)
		}
	}()

	var last Generation
	lastValue := 0
	for {
		if !r.BlockUntilUpdated() {
			break
		}
		g := r.GetGenerational()
		if g.Generation <= last {
			t.Fatalf("generation did not increase: %d after %d", g.Generation, last)
		}
		last = g.Generation
		lastValue = g.Value
	}

	if lastValue != 1000 {
		t.Errorf("expected final value 1000, got %d", lastValue)
	}
}

func TestReaderDisconnects(t *testing.T) {
	d := New(1)
	r := d.CreateReader()
	defer r.Close()

	d.Release()
	if r.BlockUntilUpdated() {
		t.Error("reader of a released cell should not block or report updates")
	}
	if _, ok := r.Next(); ok {
		t.Error("Next should report disconnection")
	}
	if r.Get() != 1 {
		t.Errorf("stale value should still be readable, got %d", r.Get())
	}
}

func TestReaderDeliversLastWriteBeforeDisconnect(t *testing.T) {
	d := New(1)
	r := d.CreateReader()
	defer r.Close()

	d.Set(2)
	d.Release()

	if !r.BlockUntilUpdated() {
		t.Fatal("unread write must be reported before disconnection")
	}
	if r.Get() != 2 {
		t.Errorf("expected 2, got %d", r.Get())
	}
	if r.BlockUntilUpdated() {
		t.Error("expected disconnection after the last write was read")
	}
}

func TestReaderDisconnectsThreaded(t *testing.T) {
	d := New(1)
	r := d.CreateReader()
	defer r.Close()

	done := make(chan bool, 1)
	go func() {
		done <- r.BlockUntilUpdated()
	}()

	time.Sleep(10 * time.Millisecond)
	d.Release()

	select {
	case updated := <-done:
		if updated {
			t.Error("expected false after release")
		}
	case <-time.After(time.Second):
		t.Fatal("reader did not wake on release")
	}
}

func TestReaderCloseUnblocks(t *testing.T) {
	d := New(1)
	r := d.CreateReader()

	if d.Readers() != 1 {
		t.Errorf("expected 1 reader, got %d", d.Readers())
	}

	done := make(chan bool, 1)
	go func() {
		done <- r.BlockUntilUpdated()
	}()

	r.Close()
	r.Close()

	select {
	case updated := <-done:
		if updated {
			t.Error("closed reader should report no update")
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not wake the reader")
	}
	if d.Readers() != 0 {
		t.Errorf("expected 0 readers, got %d", d.Readers())
	}
}

func TestReaderWaitContext(t *testing.T) {
	d := New(1)
	r := d.CreateReader()
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	ok, err := r.Wait(ctx)
	if ok {
		t.Error("expected no update")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}

	d.Set(2)
	ok, err = r.Wait(context.Background())
	if !ok || err != nil {
		t.Errorf("expected (true, nil), got (%v, %v)", ok, err)
	}
}

func TestReaderStream(t *testing.T) {
	d := New(0)
	r := d.CreateReader()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.Stream(ctx)

	d.Set(1)
	select {
	case v := <-ch:
		if v != 1 {
			t.Errorf("expected 1, got %d", v)
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not deliver")
	}

	for i := 2; i <= 50; i++ {
		d.Set(i)
	}

	last := 1
	timeout := time.After(time.Second)
	for last != 50 {
		select {
		case v := <-ch:
			if v <= last {
				t.Fatalf("stream went backwards: %d after %d", v, last)
			}
			last = v
		case <-timeout:
			t.Fatalf("stream stalled at %d", last)
		}
	}

	d.Release()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed stream after release")
		}
	case <-time.After(time.Second):
		t.Fatal("stream not closed on disconnect")
	}
}

func TestReaderStreamContextCancel(t *testing.T) {
	d := New(0)
	r := d.CreateReader()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := r.Stream(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed stream after cancel")
		}
	case <-time.After(time.Second):
		t.Fatal("stream not closed on cancel")
	}
}

func TestReaderAll(t *testing.T) {
	d := New(0)
	r := d.CreateReader()
	defer r.Close()

	writer := d.Clone()
	d.Release()
	go func() {
		defer writer.Release()
		for i := 1; i <= 10; i++ {
			writer.Set(i)
		}
	}()

	last := 0
	for v := range r.All() {
		if v <= last {
			t.Fatalf("values went backwards: %d after %d", v, last)
		}
		last = v
	}
	if last != 10 {
		t.Errorf("expected final value 10, got %d", last)
	}
}

func TestDynamicValues(t *testing.T) {
	d := New(0)
	done := make(chan int, 1)

	go func() {
		last := 0
		for v := range d.Values() {
			last = v
			if v == 3 {
				break
			}
		}
		done <- last
	}()

	for d.Readers() == 0 {
		runtime.Gosched()
	}
	d.Set(1)
	d.Set(2)
	d.Set(3)

	select {
	case last := <-done:
		if last != 3 {
			t.Errorf("expected 3, got %d", last)
		}
	case <-time.After(time.Second):
		t.Fatal("iterator did not finish")
	}
	if d.Readers() != 0 {
		t.Errorf("iterator should close its reader, %d left", d.Readers())
	}
}

func TestReaderStreamGenerational(t *testing.T) {
	d := New("a")
	r := d.CreateReader()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := r.StreamGenerational(ctx)

	d.Set("b")
	select {
	case g := <-ch:
		if g.Value != "b" || g.Generation != 1 {
			t.Errorf("expected (b, g1), got %+v", g)
		}
	case <-time.After(time.Second):
		t.Fatal("stream did not deliver")
	}
}
