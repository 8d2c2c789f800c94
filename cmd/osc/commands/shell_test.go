package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oscwire/osc-go/pkg/osc"
)

func runShell(t *testing.T, sh *Shell, line string) string {
	t.Helper()
	var out bytes.Buffer
	if sh.Process(line, &out) {
		t.Fatalf("%q ended the shell", line)
	}
	return out.String()
}

func TestShellEncode(t *testing.T) {
	sh := NewShell(osc.DefaultConfig(), nil)

	out := runShell(t, sh, "/a, 1")
	if !strings.Contains(out, "message /a ,i (12 bytes)") {
		t.Errorf("missing summary:\n%s", out)
	}
	if !strings.Contains(out, "2f610000 2c690000 00000001") {
		t.Errorf("missing hex:\n%s", out)
	}

	out = runShell(t, sh, "/a, [1")
	if !strings.HasPrefix(out, "Error:") {
		t.Errorf("parse error output = %q", out)
	}
}

func TestShellDecode(t *testing.T) {
	sh := NewShell(osc.DefaultConfig(), nil)

	if out := runShell(t, sh, ":decode 2f610000 2c690000 00000001"); out != "/a, 1\n" {
		t.Errorf("output = %q", out)
	}
	if out := runShell(t, sh, ":d 2f6"); !strings.HasPrefix(out, "Error:") {
		t.Errorf("bad hex output = %q", out)
	}
	if out := runShell(t, sh, ":decode"); !strings.HasPrefix(out, "Usage:") {
		t.Errorf("missing argument output = %q", out)
	}
}

func TestShellInspectUsesLastPacket(t *testing.T) {
	sh := NewShell(osc.DefaultConfig(), nil)

	if out := runShell(t, sh, ":inspect"); !strings.HasPrefix(out, "Nothing to inspect") {
		t.Errorf("empty inspect output = %q", out)
	}

	runShell(t, sh, `/b, "hi"`)
	out := runShell(t, sh, ":inspect")
	if !strings.Contains(out, `"/b"`) || !strings.Contains(out, `"hi"`) {
		t.Errorf("layout:\n%s", out)
	}

	out = runShell(t, sh, ":i 2f610000 2c690000 00000001")
	if !strings.Contains(out, `"/a"`) {
		t.Errorf("layout of argument bytes:\n%s", out)
	}
}

func TestShellRaw(t *testing.T) {
	sh := NewShell(osc.DefaultConfig(), nil)
	runShell(t, sh, "/a, 1")

	if out := runShell(t, sh, ":raw on"); out != "Raw bytes: on\n" {
		t.Errorf("output = %q", out)
	}
	if out := runShell(t, sh, ":inspect"); !strings.Contains(out, "| 00000001") {
		t.Errorf("layout without raw bytes:\n%s", out)
	}
	if out := runShell(t, sh, ":raw off"); out != "Raw bytes: off\n" {
		t.Errorf("output = %q", out)
	}
	if out := runShell(t, sh, ":raw maybe"); !strings.HasPrefix(out, "Usage:") {
		t.Errorf("output = %q", out)
	}
}

func TestShellGet(t *testing.T) {
	sh := NewShell(osc.DefaultConfig(), nil)

	if out := runShell(t, sh, ":get 0"); !strings.HasPrefix(out, "No packet") {
		t.Errorf("output = %q", out)
	}

	runShell(t, sh, `{ #bundle, immediate, { /a, 1 }, { /b, [2, 3] } }`)
	if out := runShell(t, sh, ":get 1/0/1"); out != "3\n" {
		t.Errorf("output = %q", out)
	}
	if out := runShell(t, sh, ":get 0/4"); !strings.HasPrefix(out, "Error:") {
		t.Errorf("output = %q", out)
	}
}

func TestShellDepth(t *testing.T) {
	sh := NewShell(osc.DefaultConfig(), nil)

	if out := runShell(t, sh, ":depth"); out != "Max depth: 32\n" {
		t.Errorf("output = %q", out)
	}
	if out := runShell(t, sh, ":depth 1"); out != "Max depth: 1\n" {
		t.Errorf("output = %q", out)
	}
	if out := runShell(t, sh, "/a, [[1]]"); !strings.HasPrefix(out, "Error:") {
		t.Errorf("nesting beyond the limit was accepted:\n%s", out)
	}
	if out := runShell(t, sh, ":depth 0"); !strings.HasPrefix(out, "Invalid depth") {
		t.Errorf("output = %q", out)
	}
}

func TestShellCommands(t *testing.T) {
	sh := NewShell(osc.DefaultConfig(), nil)

	if out := runShell(t, sh, "   "); out != "" {
		t.Errorf("blank line output = %q", out)
	}
	if out := runShell(t, sh, ":help"); !strings.Contains(out, ":decode <hex>") {
		t.Errorf("help = %q", out)
	}
	if out := runShell(t, sh, ":bogus"); !strings.HasPrefix(out, "Unknown command: bogus") {
		t.Errorf("output = %q", out)
	}

	for _, quit := range []string{":quit", ":q", ":EXIT"} {
		if !sh.Process(quit, &bytes.Buffer{}) {
			t.Errorf("%q did not end the shell", quit)
		}
	}
}
