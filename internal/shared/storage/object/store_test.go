package object

import (
	"strings"
	"testing"
)

func TestNewKeyIsOwnerPrefixed(t *testing.T) {
	key, err := NewKey("user-1", "Quarterly Report.PDF")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if !OwnedBy(key, "user-1") {
		t.Fatalf("expected key %q owned by user-1", key)
	}
	if OwnedBy(key, "user-2") {
		t.Fatalf("expected key %q not owned by user-2", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("expected lowercase extension, got %q", key)
	}
}

func TestNewKeyContainsTraversal(t *testing.T) {
	key, err := NewKey("user-1", "../etc/passwd")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if strings.Contains(key, "..") {
		t.Fatalf("expected no parent segments in %q", key)
	}
	if !OwnedBy(key, "user-1") {
		t.Fatalf("expected key %q owned by user-1", key)
	}
	if _, err := NewKey("user-1", ".."); err == nil {
		t.Fatalf("expected bare parent name to be rejected")
	}
	if _, err := NewKey("", "a.txt"); err == nil {
		t.Fatalf("expected empty user to be rejected")
	}
}

func TestNewKeyUnique(t *testing.T) {
	a, _ := NewKey("user-1", "a.txt")
	b, _ := NewKey("user-1", "a.txt")
	if a == b {
		t.Fatalf("expected distinct keys, got %q twice", a)
	}
}
