package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("null cache.Get should always return miss")
	}
	if data != nil {
		t.Error("null cache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("null cache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "children:fs:/"); err != nil || hit {
		t.Fatalf("Get on empty cache = %v, %v, want miss", hit, err)
	}
	if err := c.Set(ctx, "children:fs:/", []byte(`["a"]`), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "children:fs:/")
	if err != nil || !hit || string(data) != `["a"]` {
		t.Fatalf("Get = %q, %v, %v, want hit", data, hit, err)
	}

	if err := c.Delete(ctx, "children:fs:/"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "children:fs:/"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "children:fs:/"); err != nil {
		t.Errorf("Delete of missing key = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("1"), time.Minute)
	_ = c.Set(ctx, "long", []byte("2"), time.Hour)
	_ = c.Set(ctx, "forever", []byte("3"), 0)

	now = now.Add(10 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, hit, _ := c.Get(ctx, "long"); !hit {
		t.Error("live entry should hit")
	}

	now = now.Add(24 * time.Hour)
	removed, err := c.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl should survive Prune")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = %v, %v, want miss without error", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j1, err := HashJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatal(err)
	}
	j2, _ := HashJSON(map[string]int{"a": 2})
	if j1 == j2 {
		t.Error("HashJSON should depend on the value")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	if got := k.ChildrenKey("fs", "/srv"); got != "children:fs:/srv" {
		t.Errorf("ChildrenKey = %q, want %q", got, "children:fs:/srv")
	}

	s1 := k.SceneKey("abc", SceneKeyOpts{Strategy: "boxed", Orientation: "ltr"})
	s2 := k.SceneKey("abc", SceneKeyOpts{Strategy: "boxed", Orientation: "ttb"})
	if s1 == s2 {
		t.Error("Different SceneKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(s1, "scene:") {
		t.Errorf("SceneKey = %q, want scene: prefix", s1)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:1:")

	if got := scoped.ChildrenKey("mongo", "42"); got != "tenant:1:children:mongo:42" {
		t.Errorf("ChildrenKey = %q", got)
	}
	if got := scoped.SceneKey("abc", SceneKeyOpts{}); !strings.HasPrefix(got, "tenant:1:scene:") {
		t.Errorf("SceneKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	if got := scoped.ChildrenKey("fs", "x"); got != "prefix:children:fs:x" {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestVersionedKeyer(t *testing.T) {
	opts := SceneKeyOpts{Strategy: "boxed", Depth: 2}
	v1 := NewVersionedKeyer("1.0.0").SceneKey("abc", opts)
	v2 := NewVersionedKeyer("1.1.0").SceneKey("abc", opts)

	if !strings.HasPrefix(v1, "v1.0.0:scene:") {
		t.Errorf("SceneKey = %q, want version scope", v1)
	}
	if v1 == v2 {
		t.Error("different builds should not share scene keys")
	}
	if got := keyType(v1); got != "scene" {
		t.Errorf("keyType(%q) = %q, want scene", v1, got)
	}
}

func TestKeyType(t *testing.T) {
	tests := []struct{ key, want string }{
		{"children:fs:/", "children"},
		{"tenant:1:children:fs:/", "children"},
		{"scene:abc", "scene"},
		{"other:x", "other"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := keyType(tt.key); got != tt.want {
			t.Errorf("keyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestInstrument(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)

	ctx := context.Background()
	inner, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Instrument(inner)
	_, _, _ = c.Get(ctx, "children:fs:/")
	_ = c.Set(ctx, "children:fs:/", []byte("x"), 0)
	_, _, _ = c.Get(ctx, "children:fs:/")

	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hits=%d misses=%d sets=%d, want 1/1/1", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("ARBOR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ARBOR_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr, Prefix: "arbor-test:"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestNewRedisCacheRequiresAddr(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{})
	if err == nil {
		t.Fatal("NewRedisCache without address should fail")
	}
	if !errors.IsConfig(err) {
		t.Errorf("NewRedisCache() error = %v, want a config error", err)
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", errors.New(errors.ErrCodeNetwork, "refused"), true},
		{"timeout", errors.New(errors.ErrCodeTimeout, "deadline"), true},
		{"wrapped network", errors.Wrap(errors.ErrCodeLoad, errors.New(errors.ErrCodeNetwork, "refused"), "children"), true},
		{"not found", errors.New(errors.ErrCodeNotFound, "no documents"), false},
		{"plain", context.Canceled, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.want {
				t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	b := Backoff{Attempts: 3, Delay: time.Millisecond}
	transient := errors.New(errors.ErrCodeNetwork, "refused")
	permanent := errors.New(errors.ErrCodeNotFound, "missing")

	calls := 0
	err := b.Do(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d, want nil/1", err, calls)
	}

	calls = 0
	err = b.Do(ctx, func() error {
		calls++
		return permanent
	})
	if err != permanent || calls != 1 {
		t.Errorf("permanent: err=%v calls=%d, want %v/1", err, calls, permanent)
	}

	calls = 0
	err = b.Do(ctx, func() error {
		calls++
		if calls < 2 {
			return transient
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err=%v calls=%d, want nil/2", err, calls)
	}

	calls = 0
	err = b.Do(ctx, func() error {
		calls++
		return transient
	})
	if err != transient || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d, want %v/3", err, calls, transient)
	}
}

func TestBackoffZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Backoff{}.Do(context.Background(), func() error {
		calls++
		return errors.New(errors.ErrCodeTimeout, "slow")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 3, Delay: time.Hour}.Do(ctx, func() error {
		return errors.New(errors.ErrCodeNetwork, "refused")
	})
	if err != context.Canceled {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}
