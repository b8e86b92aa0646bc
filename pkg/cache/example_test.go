package cache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
)

func ExampleNewScopedKeyer() {
	k := cache.NewScopedKeyer(nil, "tenant:1:")
	fmt.Println(k.ChildrenKey("mongo:org.people", "42"))
	// Output:
	// tenant:1:children:mongo:org.people:42
}

func ExampleBackoff_Do() {
	b := cache.Backoff{Attempts: 3, Delay: time.Millisecond}

	calls := 0
	err := b.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New(errors.ErrCodeNetwork, "connection refused")
		}
		return nil
	})
	fmt.Println(calls, err)
	// Output:
	// 3 <nil>
}
