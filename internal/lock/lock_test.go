package lock

import (
	"context"
	"sync"
	"testing"
)

func TestLocalLockerSerializesPerUser(t *testing.T) {
	locker := NewLocalLocker()

	const workers = 20
	var inSection int
	var maxInSection int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), 1)
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer release()

			mu.Lock()
			inSection++
			if inSection > maxInSection {
				maxInSection = inSection
			}
			mu.Unlock()

			mu.Lock()
			inSection--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInSection != 1 {
		t.Errorf("expected at most 1 holder at a time, saw %d", maxInSection)
	}
}

func TestLocalLockerIndependentUsers(t *testing.T) {
	locker := NewLocalLocker()

	release1, err := locker.Acquire(context.Background(), 1)
	if err != nil {
		t.Fatalf("Acquire(1) failed: %v", err)
	}
	defer release1()

	// A different user's lock must not block
	release2, err := locker.Acquire(context.Background(), 2)
	if err != nil {
		t.Fatalf("Acquire(2) failed: %v", err)
	}
	release2()
}
