package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit := Version, GitCommit
	return func() {
		Version = origVersion
		GitCommit = origCommit
	}
}

func TestGetDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"

	info := Get()
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
}

func TestGetRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abcdef0123456"

	info := Get()
	if !info.IsRelease {
		t.Error("1.2.0 should be a release")
	}
	if info.GitCommit != "abcdef0" {
		t.Errorf("commit = %q, want abcdef0", info.GitCommit)
	}
}

func TestShortAndUserAgent(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.0"
	GitCommit = "abc1234"

	if s := Short(); !strings.HasPrefix(s, "1.2.0-abc1234") {
		t.Errorf("Short() = %q", s)
	}
	if ua := UserAgent(); !strings.HasPrefix(ua, "clientkit/1.2.0-abc1234") {
		t.Errorf("UserAgent() = %q", ua)
	}
}
