package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jforshea/authhub/internal/domain/user"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	u := user.User{ID: 1, Email: "test@test.com"}
	c.Set(ctx, u)

	got, ok := c.Get(ctx, 1)
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if got.Email != "test@test.com" {
		t.Fatalf("got %q", got.Email)
	}
}

func TestMemoryMiss(t *testing.T) {
	c := NewMemory(time.Minute)

	if _, ok := c.Get(context.Background(), 99); ok {
		t.Fatalf("expected a miss for an unknown id")
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	c.Set(ctx, user.User{ID: 1})

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, 1); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory(time.Minute)
	ctx := context.Background()

	c.Set(ctx, user.User{ID: 1})
	c.Delete(1)

	if _, ok := c.Get(ctx, 1); ok {
		t.Fatalf("expected entry to be gone after delete")
	}
}
