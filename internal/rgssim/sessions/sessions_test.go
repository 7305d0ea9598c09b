package sessions

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryTouchThenCheck(t *testing.T) {
	m := NewMemory(time.Minute)
	ctx := context.Background()

	if err := m.Check(ctx, "sess-1"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("err = %v, want ErrUnknown", err)
	}
	if err := m.Touch(ctx, "sess-1"); err != nil {
		t.Fatal(err)
	}
	if err := m.Check(ctx, "sess-1"); err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestMemoryExpires(t *testing.T) {
	m := NewMemory(10 * time.Millisecond)
	ctx := context.Background()

	if err := m.Touch(ctx, "sess-1"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(25 * time.Millisecond)

	if err := m.Check(ctx, "sess-1"); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
	// depois de vencida a sessão some do registro
	if err := m.Check(ctx, "sess-1"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("err = %v, want ErrUnknown", err)
	}
}

func TestMemoryCheckRenews(t *testing.T) {
	m := NewMemory(40 * time.Millisecond)
	ctx := context.Background()

	if err := m.Touch(ctx, "sess-1"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		time.Sleep(20 * time.Millisecond)
		if err := m.Check(ctx, "sess-1"); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}
}
