package observability

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestNewRequestIDReturnsUUID(t *testing.T) {
	id := NewRequestID()
	if id == "" {
		t.Fatal("expected non-empty request id")
	}

	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected valid UUID, got %q: %v", id, err)
	}
}

func TestRequestIDContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	want := "abc-123"

	ctx = ContextWithRequestID(ctx, want)
	got := RequestIDFromContext(ctx)

	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRequestIDFromContextWhenMissingOrWrongType(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		got := RequestIDFromContext(context.Background())
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, 42)
		got := RequestIDFromContext(ctx)
		if got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
	})
}

func TestRequestIDFromHeader(t *testing.T) {
	t.Run("valid uuid is kept", func(t *testing.T) {
		want := "3f2c6d1e-8a4b-4c1d-9e2f-0a1b2c3d4e5f"
		if got := RequestIDFromHeader(want); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("garbage is replaced", func(t *testing.T) {
		got := RequestIDFromHeader("not-a-uuid")
		if got == "not-a-uuid" {
			t.Fatal("expected a fresh request id")
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("expected valid UUID, got %q: %v", got, err)
		}
	})

	t.Run("empty is replaced", func(t *testing.T) {
		if _, err := uuid.Parse(RequestIDFromHeader("")); err != nil {
			t.Fatalf("expected valid UUID: %v", err)
		}
	})
}
