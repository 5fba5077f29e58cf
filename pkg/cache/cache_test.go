package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestFileCacheSetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Errorf("Get(missing) = ok=%v err=%v, want miss", ok, err)
	}

	if err := c.Set(ctx, "k", []byte("verdict"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get(k) = ok=%v err=%v, want hit", ok, err)
	}
	if string(data) != "verdict" {
		t.Errorf("Get(k) = %q, want %q", data, "verdict")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get(expired) = ok=%v err=%v, want miss", ok, err)
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get(deleted) = hit, want miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error = %v, want nil", err)
	}
}

func TestFileCacheCorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.entryPath("k"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get(corrupt) = ok=%v err=%v, want miss without error", ok, err)
	}
}

func TestFileCachePurge(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, key, []byte("v"), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Purge()
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Purge() = %d, want 3", n)
	}
	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Error("Get(a) after purge = hit, want miss")
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get() = ok=%v err=%v, want miss", ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestVerdictKeys(t *testing.T) {
	k := NewDefaultKeyer()
	if got, want := k.VerdictKey("abc123", "implicit"), "verdict:implicit:abc123"; got != want {
		t.Errorf("VerdictKey() = %q, want %q", got, want)
	}

	scoped := NewScopedKeyer(nil, "tenant1:")
	if got, want := scoped.VerdictKey("abc123", "strict"), "tenant1:verdict:strict:abc123"; got != want {
		t.Errorf("scoped VerdictKey() = %q, want %q", got, want)
	}
}

func TestHash(t *testing.T) {
	got := Hash([]byte("hello"))
	if len(got) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(got))
	}
	if got != Hash([]byte("hello")) {
		t.Error("Hash() is not deterministic")
	}
	if got == Hash([]byte("hello!")) {
		t.Error("Hash() collided on distinct inputs")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	t.Run("NonRetryableFailsFast", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("fatal")
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Errorf("error = %v, want %v", err, wantErr)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("SucceedsFirstTry", func(t *testing.T) {
		if err := RetryWithBackoff(ctx, func() error { return nil }); err != nil {
			t.Errorf("error = %v, want nil", err)
		}
	})

	t.Run("ContextCancelStopsRetries", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := RetryWithBackoff(ctx, func() error {
			return Retryable(errors.New("transient"))
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("IsRetryable(plain) = true, want false")
	}
	if !IsRetryable(Retryable(errors.New("transient"))) {
		t.Error("IsRetryable(wrapped) = false, want true")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
}
