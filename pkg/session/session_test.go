package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/arbor/pkg/errors"
)

func newTestStore(ttl time.Duration) (*Store[*int], *time.Time) {
	st := NewStore[*int](ttl)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	return st, &now
}

func TestCreateGet(t *testing.T) {
	st, _ := newTestStore(time.Minute)
	v := 1
	s := st.Create(&v)

	got, err := st.Get(s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session")
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}

func TestGetUnknown(t *testing.T) {
	st, _ := newTestStore(time.Minute)
	for _, id := range []string{"", "not-a-uuid", "1b4e28ba-2fa1-11d2-883f-0016d3cca427"} {
		_, err := st.Get(id)
		if !errors.IsNotFound(err) {
			t.Errorf("Get(%q) = %v, want not found", id, err)
		}
	}
}

func TestExpiry(t *testing.T) {
	st, now := newTestStore(time.Minute)
	s := st.Create(new(int))

	*now = now.Add(50 * time.Second)
	if _, err := st.Get(s.ID); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	// Get extended the expiry.
	*now = now.Add(50 * time.Second)
	if _, err := st.Get(s.ID); err != nil {
		t.Fatalf("Get after touch: %v", err)
	}

	*now = now.Add(2 * time.Minute)
	if _, err := st.Get(s.ID); err != ErrExpired {
		t.Errorf("Get after expiry = %v, want ErrExpired", err)
	}
}

func TestCleanup(t *testing.T) {
	st, now := newTestStore(time.Minute)
	var released []string
	st.OnExpire = func(id string, _ *int) { released = append(released, id) }

	old := st.Create(new(int))
	*now = now.Add(40 * time.Second)
	fresh := st.Create(new(int))
	*now = now.Add(30 * time.Second)

	if n := st.Cleanup(context.Background()); n != 1 {
		t.Errorf("Cleanup = %d, want 1", n)
	}
	if len(released) != 1 || released[0] != old.ID {
		t.Errorf("released = %v, want [%s]", released, old.ID)
	}
	if _, err := st.Get(fresh.ID); err != nil {
		t.Errorf("fresh session: %v", err)
	}
	if err := old.Do(func(*int) error { return nil }); err != ErrExpired {
		t.Errorf("Do on removed session = %v, want ErrExpired", err)
	}
}

func TestDeleteDropsPosts(t *testing.T) {
	st, _ := newTestStore(time.Minute)
	s := st.Create(new(int))
	st.Delete(s.ID)
	st.Delete(s.ID)

	ran := false
	s.Post(func() { ran = true })
	if ran {
		t.Error("Post should not run after Delete")
	}
}

func TestDoSerializes(t *testing.T) {
	st, _ := newTestStore(time.Minute)
	v := 0
	s := st.Create(&v)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Do(func(p *int) error { *p++; return nil })
		}()
		go func() {
			defer wg.Done()
			s.Post(func() { v++ })
		}()
	}
	wg.Wait()
	if v != 100 {
		t.Errorf("counter = %d, want 100", v)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	st, _ := newTestStore(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
