package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreVersions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Latest(ctx, "board_a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty store err = %v", err)
	}

	for i, doc := range []string{`{"v":1}`, `{"v":2}`} {
		rec, err := s.Save(ctx, "board_a", []byte(doc))
		if err != nil {
			t.Fatal(err)
		}
		if rec.Version != i+1 {
			t.Errorf("version = %d, want %d", rec.Version, i+1)
		}
	}
	if _, err := s.Save(ctx, "board_b", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Latest(ctx, "board_a")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Version != 2 || string(rec.Data) != `{"v":2}` {
		t.Errorf("latest = %d %s", rec.Version, rec.Data)
	}
	if rec, _ := s.Latest(ctx, "board_b"); rec.Version != 1 {
		t.Errorf("board_b version = %d", rec.Version)
	}
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	data := []byte(`{"v":1}`)
	if _, err := s.Save(ctx, "b", data); err != nil {
		t.Fatal(err)
	}
	data[2] = 'x'

	rec, _ := s.Latest(ctx, "b")
	if string(rec.Data) != `{"v":1}` {
		t.Errorf("stored data aliased caller buffer: %s", rec.Data)
	}
}

func TestMemoryStoreCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryStore().Save(ctx, "b", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
