package cli

import (
	"bytes"
	"strings"
	"testing"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedSubcommands := []string{"repo", "workpad", "patch", "test", "promote", "config", "audit", "version"}
	for _, sub := range expectedSubcommands {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestRepoSubcommands(t *testing.T) {
	subcmds := []string{"clone", "import-archive", "list"}
	for _, sub := range subcmds {
		out, err := executeCommand("repo", sub, "--help")
		if err != nil {
			t.Errorf("repo %s --help failed: %v", sub, err)
		}
		if out == "" {
			t.Errorf("repo %s --help produced no output", sub)
		}
	}
}

func TestWorkpadSubcommands(t *testing.T) {
	subcmds := []string{"create", "list", "show"}
	for _, sub := range subcmds {
		out, err := executeCommand("workpad", sub, "--help")
		if err != nil {
			t.Errorf("workpad %s --help failed: %v", sub, err)
		}
		if out == "" {
			t.Errorf("workpad %s --help produced no output", sub)
		}
	}
}

func TestConfigSubcommands(t *testing.T) {
	subcmds := []string{"validate", "show"}
	for _, sub := range subcmds {
		out, err := executeCommand("config", sub, "--help")
		if err != nil {
			t.Errorf("config %s --help failed: %v", sub, err)
		}
		if out == "" {
			t.Errorf("config %s --help produced no output", sub)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := executeCommand("nonexistent")
	if err == nil {
		t.Error("expected error for unknown command, got nil")
	}
}
