package buildinfo

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintBuildData(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "v1.2.3"

	var buf bytes.Buffer
	PrintBuildData(&buf)

	out := buf.String()
	if !strings.Contains(out, "Build version: v1.2.3") {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(out, "Build commit: N/A") {
		t.Fatalf("unexpected output: %q", out)
	}
}
