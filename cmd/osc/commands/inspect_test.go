package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/oscwire/osc-go/pkg/inspect"
	"github.com/oscwire/osc-go/pkg/osc"
)

func TestRunInspectLayout(t *testing.T) {
	var out bytes.Buffer
	if err := RunInspect(encodedA, InspectOptions{}, &out); err != nil {
		t.Fatalf("RunInspect: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "offset") {
		t.Errorf("header = %q", lines[0])
	}
	for i, want := range []string{`"/a"`, ",i", "int32"} {
		if !strings.Contains(lines[i+1], want) {
			t.Errorf("line %d = %q, want it to contain %q", i+1, lines[i+1], want)
		}
	}
	if strings.Contains(out.String(), "|") {
		t.Error("raw bytes shown without ShowRaw")
	}
}

func TestRunInspectShowRaw(t *testing.T) {
	var out bytes.Buffer
	if err := RunInspect(encodedA, InspectOptions{ShowRaw: true}, &out); err != nil {
		t.Fatalf("RunInspect: %v", err)
	}
	if !strings.Contains(out.String(), "| 2f610000") {
		t.Errorf("missing raw address bytes:\n%s", out.String())
	}
}

func TestRunInspectPartialLayout(t *testing.T) {
	data := append(append([]byte{}, encodedA[:8]...), 0, 0)

	var out bytes.Buffer
	err := RunInspect(data, InspectOptions{}, &out)
	if err == nil {
		t.Fatal("expected layout error")
	}
	if !strings.Contains(out.String(), `"/a"`) {
		t.Errorf("fields read before the error were not written:\n%s", out.String())
	}
}

func TestRunInspectPath(t *testing.T) {
	b := osc.MustBundle(osc.Immediate,
		osc.MustMessage("/a"),
		osc.MustMessage("/b", osc.Int32(7), osc.String("x")),
	)
	data, err := osc.Encode(b)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var out bytes.Buffer
	if err := RunInspect(data, InspectOptions{Path: "1/1"}, &out); err != nil {
		t.Fatalf("RunInspect: %v", err)
	}
	if out.String() != "\"x\"\n" {
		t.Errorf("output = %q", out.String())
	}

	err = RunInspect(data, InspectOptions{Path: "5"}, &out)
	if !errors.Is(err, inspect.ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestReadInspectInput(t *testing.T) {
	data, err := ReadInspectInput([]string{"2f610000", "2c690000 00000001"}, FormatHex, nil)
	if err != nil {
		t.Fatalf("ReadInspectInput: %v", err)
	}
	if !bytes.Equal(data, encodedA) {
		t.Errorf("args: got %x", data)
	}

	data, err = ReadInspectInput(nil, FormatHex, strings.NewReader("2f610000\n2c690000\n00000001\n"))
	if err != nil || !bytes.Equal(data, encodedA) {
		t.Errorf("hex stdin: got %x, %v", data, err)
	}

	data, err = ReadInspectInput(nil, FormatRaw, bytes.NewReader(encodedA))
	if err != nil || !bytes.Equal(data, encodedA) {
		t.Errorf("raw stdin: got %x, %v", data, err)
	}

	if _, err := ReadInspectInput(nil, FormatStream, strings.NewReader("")); err == nil {
		t.Error("expected error for stream format")
	}
}
