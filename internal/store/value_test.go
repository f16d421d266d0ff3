package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/persistence"
)

type record struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

// failingKV wraps a KV and lets tests break individual operations.
type failingKV struct {
	persistence.KV
	putErr error
	getErr error
	puts   int
}

func (f *failingKV) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.KV.Get(ctx, key)
}

func (f *failingKV) Put(ctx context.Context, key string, value []byte) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	return f.KV.Put(ctx, key, value)
}

func TestGetReturnsDefaultWithoutWriting(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	def := record{Name: "default"}

	v := Bind(kv, "rec", def, zap.NewNop())
	if got := v.Get(ctx); !reflect.DeepEqual(got, def) {
		t.Fatalf("Get() = %+v, want %+v", got, def)
	}
	if _, err := kv.Get(ctx, "rec"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("default was persisted before first write: err = %v", err)
	}
}

func TestRoundTripThroughFreshValue(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	want := record{Name: "tickets", Count: 3, Tags: []string{"a", "b"}}

	Bind(kv, "rec", record{}, zap.NewNop()).Set(ctx, want)

	got := Bind(kv, "rec", record{}, zap.NewNop()).Get(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fresh Get() = %+v, want %+v", got, want)
	}
}

func TestRoundTripFileBackend(t *testing.T) {
	ctx := context.Background()
	kv, err := persistence.NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV: %v", err)
	}
	want := []string{"x", "y"}

	Bind(kv, "list", []string(nil), zap.NewNop()).Set(ctx, want)
	got := Bind(kv, "list", []string(nil), zap.NewNop()).Get(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("fresh Get() = %v, want %v", got, want)
	}
}

func TestInvalidJSONFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	if err := kv.Put(ctx, "rec", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	def := record{Name: "fallback"}
	if got := Bind(kv, "rec", def, zap.NewNop()).Get(ctx); !reflect.DeepEqual(got, def) {
		t.Fatalf("Get() = %+v, want default %+v", got, def)
	}
}

func TestWriteFailureKeepsValueInMemory(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: persistence.NewMemoryKV(), putErr: errors.New("quota exceeded")}

	v := Bind(kv, "count", 0, zap.NewNop())
	v.Set(ctx, 5)
	got := v.Update(ctx, func(n int) int { return n + 1 })

	if got != 6 || v.Get(ctx) != 6 {
		t.Fatalf("value = %d, want 6", v.Get(ctx))
	}
	if kv.puts != 2 {
		t.Fatalf("puts = %d, want a write attempt per mutation", kv.puts)
	}
}

func TestReadFailureUsesDefault(t *testing.T) {
	kv := &failingKV{KV: persistence.NewMemoryKV(), getErr: errors.New("disk gone")}
	if got := Bind(kv, "count", 7, zap.NewNop()).Get(context.Background()); got != 7 {
		t.Fatalf("Get() = %d, want 7", got)
	}
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	v := Bind(kv, "count", 0, zap.NewNop())
	v.Set(ctx, 1)

	if err := kv.Put(ctx, "count", []byte("42")); err != nil {
		t.Fatal(err)
	}
	if got := v.Get(ctx); got != 1 {
		t.Fatalf("cached Get() = %d, want 1 before reload", got)
	}
	got, ok := v.Reload(ctx)
	if !ok || got != 42 {
		t.Fatalf("Reload() = %d, %v; want 42, true", got, ok)
	}
}

func TestReloadKeepsCacheOnBadData(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	v := Bind(kv, "count", 0, zap.NewNop())
	v.Set(ctx, 3)

	if err := kv.Put(ctx, "count", []byte("oops")); err != nil {
		t.Fatal(err)
	}
	got, ok := v.Reload(ctx)
	if ok || got != 3 {
		t.Fatalf("Reload() = %d, %v; want 3, false", got, ok)
	}
}

func TestResetWritesDefault(t *testing.T) {
	ctx := context.Background()
	kv := persistence.NewMemoryKV()
	v := Bind(kv, "tab", "all", zap.NewNop())
	v.Set(ctx, "resolved")

	if got := v.Reset(ctx); got != "all" {
		t.Fatalf("Reset() = %q, want all", got)
	}
	raw, err := kv.Get(ctx, "tab")
	if err != nil || string(raw) != `"all"` {
		t.Fatalf("stored = %s, %v; want \"all\"", raw, err)
	}
}
