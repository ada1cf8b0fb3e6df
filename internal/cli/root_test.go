package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	t.Cleanup(func() {
		// cobra does not reset persisted flag values between Execute calls;
		// clear the help flag so later tests on the shared rootCmd see it unset.
		rootCmd.Flags().Lookup("help").Value.Set("false")
	})
	rootCmd.SetArgs([]string{"--help"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	output := buf.String()
	if output == "" {
		t.Error("expected help output, got empty string")
	}
	if !strings.Contains(output, "sheetsync") {
		t.Error("expected help to contain 'sheetsync'")
	}
	for _, cmd := range []string{"diff", "plan", "conflicts"} {
		if !strings.Contains(output, cmd) {
			t.Errorf("expected help to list %q", cmd)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	SetVersion("1.2.3")
	rootCmd.SetArgs([]string{"--version"})
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if output := buf.String(); !strings.Contains(output, "1.2.3") {
		t.Errorf("expected version output to contain 1.2.3, got %q", output)
	}
}

func TestRootCommand_InvalidCommand(t *testing.T) {
	rootCmd.SetArgs([]string{"invalid-command"})
	var buf bytes.Buffer
	rootCmd.SetErr(&buf)

	err := rootCmd.Execute()
	if err == nil {
		t.Error("expected error for invalid command")
	}
}

func TestSetVersion_EmptyKeepsCurrent(t *testing.T) {
	SetVersion("2.0.0")
	SetVersion("")
	if rootCmd.Version != "2.0.0" {
		t.Errorf("Version = %q, want 2.0.0", rootCmd.Version)
	}
}
