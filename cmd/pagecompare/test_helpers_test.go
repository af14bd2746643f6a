package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pagecompare/internal/config"
	"pagecompare/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	docA       string
	docB       string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("NO_COLOR", "1")
	t.Chdir(base)

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	docs := filepath.Join(base, "docs")
	docA := testsupport.WriteDocument(t, filepath.Join(docs, "draft"),
		testsupport.PageSpec{Name: "page1", Text: "Introduction to the annual shareholder meeting agenda"},
		testsupport.PageSpec{Name: "page2", Text: "Financial statements including revenue expenses and margins"},
	)
	docB := testsupport.WriteDocument(t, filepath.Join(docs, "final"),
		testsupport.PageSpec{Name: "page1", Text: "Introduction to the annual shareholder meeting agenda"},
		testsupport.PageSpec{Name: "page2", Text: "Completely unrelated marketing brochure about holiday cruises"},
		testsupport.PageSpec{Name: "page3", Text: "Financial statements including revenue expenses and margins"},
	)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		docA:       docA,
		docB:       docB,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[alignment]
tolerance = %d
pixel_threshold = %g

[paths]
log_dir = %q
report_dir = %q

[history]
enabled = true
path = %q

[logging]
format = "json"
level = "error"
`,
		cfg.Alignment.Tolerance,
		cfg.Alignment.PixelThreshold,
		cfg.Paths.LogDir,
		cfg.Paths.ReportDir,
		cfg.History.Path,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
