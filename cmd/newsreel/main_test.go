package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	cfgPath := filepath.Join(base, "newsreel.toml")
	content := fmt.Sprintf(`[paths]
staging_dir = %q
output_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"
`,
		filepath.Join(base, "staging"),
		filepath.Join(base, "output"),
		filepath.Join(base, "logs"),
	)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v\noutput: %s", args, err, out.String())
	}
	return out.String()
}

func TestSubmitAndQueueList(t *testing.T) {
	cfgPath := writeTestConfig(t)

	imagePath := filepath.Join(t.TempDir(), "anchor.png")
	if err := os.WriteFile(imagePath, []byte("png"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	textPath := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(textPath, []byte("Markets rallied today. Analysts expect more."), 0o644); err != nil {
		t.Fatalf("write text: %v", err)
	}

	out := runCommand(t, "--config", cfgPath, "submit",
		"--image", imagePath,
		"--text", textPath,
		"--topic", "Market rally",
		"--style", "classic",
	)
	if !strings.Contains(out, "Queued job") {
		t.Fatalf("unexpected submit output: %s", out)
	}

	out = runCommand(t, "--config", cfgPath, "queue", "list")
	if !strings.Contains(out, "Market rally") || !strings.Contains(out, "pending") {
		t.Fatalf("unexpected list output: %s", out)
	}
}

func TestSubmitRejectsUnknownStyle(t *testing.T) {
	cfgPath := writeTestConfig(t)
	imagePath := filepath.Join(t.TempDir(), "anchor.png")
	if err := os.WriteFile(imagePath, []byte("png"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	textPath := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(textPath, []byte("One sentence."), 0o644); err != nil {
		t.Fatalf("write text: %v", err)
	}

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "submit",
		"--image", imagePath, "--text", textPath, "--topic", "X", "--style", "vaporwave"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected unknown style to fail")
	}
}

func TestQueueClearRequiresScopeFlag(t *testing.T) {
	cfgPath := writeTestConfig(t)

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "queue", "clear"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected clear without scope flag to fail")
	}
}
