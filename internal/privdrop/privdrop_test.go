package privdrop

import (
	"syscall"
	"testing"
)

func TestIsRoot(t *testing.T) {
	if got, want := IsRoot(), syscall.Geteuid() == 0; got != want {
		t.Errorf("IsRoot: want %v got %v", want, got)
	}
}

func TestDropUnknownUser(t *testing.T) {
	if err := Drop("doesnotexist12345"); err == nil {
		t.Error("Drop succeeded for a nonexistent user")
	}
}

func TestDropRefusesRoot(t *testing.T) {
	if !IsRoot() {
		t.Skip("Not running as root")
	}
	if err := Drop("root"); err == nil {
		t.Error("Drop accepted uid 0")
	}
}
