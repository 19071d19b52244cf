package main

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	var out syncBuffer
	if err := runCommand(t, &out, "version"); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	for _, want := range []string{"Harbor " + Version, "Git Commit: " + GitCommit, runtime.Version()} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestVersionInfo(t *testing.T) {
	origVersion := Version
	Version = "9.9.9-test"
	defer func() { Version = origVersion }()

	if got := versionInfo().Version; got != "9.9.9-test" {
		t.Errorf("versionInfo().Version = %q", got)
	}
}
