package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dupefinder/internal/config"
	"dupefinder/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	stub       *testsupport.FPCalcStub
	root       string
	configPath string
	paths      map[string]string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("NO_COLOR", "1")

	stub := testsupport.NewFPCalcStub(t)
	root := filepath.Join(base, "music")
	env := &cliTestEnv{stub: stub, root: root, paths: map[string]string{}}
	env.addTrack(t, "a.mp3", 180, "1,2,3,4,5,6,7,8,9,10")
	env.addTrack(t, "b.flac", 181, "1,2,3,4,5,6,7,8,9,10")
	env.addTrack(t, "c.ogg", 200, "11,12,13,14")

	env.cfg = testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithFPCalc(stub.Binary)}, opts...)...)
	env.configPath = filepath.Join(base, "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func (e *cliTestEnv) addTrack(t *testing.T, name string, duration int, fp string) {
	t.Helper()
	e.paths[name] = testsupport.AudioTree(t, e.root, name)[0]
	e.stub.SetFingerprint(name, duration, fp)
}

func runCLI(t *testing.T, args []string, stdin, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
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
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
