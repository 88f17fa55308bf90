package memory

import (
	"encoding/json"
	"testing"
)

func TestWhiteboardSaveGetClear(t *testing.T) {
	s := NewWhiteboardStore()

	if _, ok := s.Get("art"); ok {
		t.Fatal("fresh store must hold no boards")
	}

	s.Save("art", json.RawMessage(`[{"stroke":1}]`))
	data, ok := s.Get("art")
	if !ok {
		t.Fatal("Get after Save should find the board")
	}
	if string(data) != `[{"stroke":1}]` {
		t.Fatalf("board contents wrong: %s", data)
	}

	// Last write wins.
	s.Save("art", json.RawMessage(`[{"stroke":2}]`))
	data, _ = s.Get("art")
	if string(data) != `[{"stroke":2}]` {
		t.Fatalf("overwrite lost: %s", data)
	}

	s.Clear("art")
	if _, ok := s.Get("art"); ok {
		t.Fatal("Get after Clear should find nothing")
	}
	// Clearing twice is fine.
	s.Clear("art")
}

func TestWhiteboardBoardsAreIndependent(t *testing.T) {
	s := NewWhiteboardStore()
	s.Save("alpha", json.RawMessage(`"a"`))
	s.Save("beta", json.RawMessage(`"b"`))

	s.Clear("alpha")
	if _, ok := s.Get("alpha"); ok {
		t.Fatal("alpha should be cleared")
	}
	if data, ok := s.Get("beta"); !ok || string(data) != `"b"` {
		t.Fatal("beta must be untouched by clearing alpha")
	}
}
