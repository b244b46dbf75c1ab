package registry

import (
	"sync"
	"testing"
	"time"
)

func TestKeyLocksSerializeSameKey(t *testing.T) {
	k := newKeyLocks()

	unlock := k.lock("a")
	acquired := make(chan struct{})
	go func() {
		release := k.lock("a")
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock on the same key acquired while held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-acquired

	if n := k.len(); n != 0 {
		t.Fatalf("expected no live locks, got %d", n)
	}
}

func TestKeyLocksIndependentKeys(t *testing.T) {
	k := newKeyLocks()

	unlockA := k.lock("a")
	defer unlockA()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		k.lock("b")()
	}()
	wg.Wait()
}
