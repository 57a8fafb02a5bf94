package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newTestOutput(t *testing.T, jsonMode bool) (*Output, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("json", jsonMode, "")
	cmd.SetOut(buf)
	return NewOutput(cmd), buf
}

func TestOutputPlainForNonTerminalWriter(t *testing.T) {
	o, buf := newTestOutput(t, false)

	if o.colorEnabled {
		t.Error("color enabled for a buffer writer")
	}
	if got := o.Green("entry"); got != "entry" {
		t.Errorf("Green = %q, want unstyled text", got)
	}
	if got := o.Red("avoid"); got != "avoid" {
		t.Errorf("Red = %q, want unstyled text", got)
	}

	o.Success("saved %d rows", 3)
	if out := buf.String(); strings.Contains(out, "\x1b[") {
		t.Errorf("output contains escape codes: %q", out)
	}
}

func TestOutputJSONModeDisablesColor(t *testing.T) {
	o, _ := newTestOutput(t, true)

	if !o.IsJSON() {
		t.Fatal("IsJSON = false, want true")
	}
	if o.colorEnabled {
		t.Error("color enabled in JSON mode")
	}
	if got := o.Yellow("warn"); got != "warn" {
		t.Errorf("Yellow = %q, want unstyled text", got)
	}
}

func TestOutputWritesToCommandWriter(t *testing.T) {
	o, buf := newTestOutput(t, false)

	o.Println("hello")
	if got := buf.String(); got != "hello\n" {
		t.Errorf("buffer = %q, want %q", got, "hello\n")
	}
}
