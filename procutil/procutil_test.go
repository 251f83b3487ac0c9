package procutil

import (
	"os"
	"testing"
)

func TestResolveExePathForSelf(t *testing.T) {
	path, err := ResolveExePath(os.Getpid())
	if err != nil {
		t.Fatalf("unexpected error resolving own exe path: %s", err)
	}
	if path == "" {
		t.Logf("expected a non-empty resolved exe path")
		t.Fail()
	}
}

func TestResolveFDPathForStdin(t *testing.T) {
	path, err := ResolveFDPath(os.Getpid(), 0)
	if err != nil {
		t.Fatalf("unexpected error resolving fd 0 of self: %s", err)
	}
	if path == "" {
		t.Logf("expected a non-empty resolved fd path")
		t.Fail()
	}
}

func TestResolveFDPathUnknownFD(t *testing.T) {
	_, err := ResolveFDPath(os.Getpid(), 99999)
	if err == nil {
		t.Logf("expected resolving a non-existent fd to return an error")
		t.Fail()
	}
}
