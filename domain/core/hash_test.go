package core

import "testing"

func TestComputeCacheKeyDeterministic(t *testing.T) {
	a := ComputeCacheKey("system prompt", "generation")
	b := ComputeCacheKey("system prompt", "generation")
	if a != b {
		t.Error("identical inputs must produce identical cache keys")
	}
}

func TestComputeCacheKeyDistinguishesInputs(t *testing.T) {
	base := ComputeCacheKey("system prompt", "generation")

	if ComputeCacheKey("other prompt", "generation") == base {
		t.Error("different system prompts must produce different keys")
	}
	if ComputeCacheKey("system prompt", "judging") == base {
		t.Error("different stage tags must produce different keys")
	}
	// Boundary shuffling between the two fields must not collide.
	if ComputeCacheKey("system promptgen", "eration") == ComputeCacheKey("system prompt", "generation") {
		t.Error("field boundary must be part of the key")
	}
}

func TestNewIDNonEmpty(t *testing.T) {
	id := NewID()
	if id.IsEmpty() {
		t.Error("NewID returned empty id")
	}
	if id == NewID() {
		t.Error("two ids collided")
	}
}
