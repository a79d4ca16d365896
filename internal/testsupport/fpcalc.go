package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// FPCalcStub is a shell script standing in for chromaprint's fpcalc. Its
// behaviour per audio file is driven by fixture files keyed on the audio
// file's base name: <name>.out (stdout), <name>.stderr, <name>.exit (exit
// code), and <name>.sleep (seconds to sleep first). Files without fixtures
// fail with exit code 2. "-version" prints a fixed version line. Every
// fingerprinting invocation appends the target path to
// calls.log and the full argument vector to args.log.
type FPCalcStub struct {
	t      testing.TB
	Binary string
	Dir    string
}

const fpcalcStubScript = `#!/bin/sh
dir=%q
if [ "$1" = "-version" ]; then echo "fpcalc version 1.5.1"; exit 0; fi
target=""
for arg in "$@"; do target="$arg"; done
name=$(basename "$target")
echo "$target" >> "$dir/calls.log"
echo "$*" >> "$dir/args.log"
if [ -f "$dir/$name.sleep" ]; then sleep "$(cat "$dir/$name.sleep")"; fi
if [ -f "$dir/$name.stderr" ]; then cat "$dir/$name.stderr" >&2; fi
if [ -f "$dir/$name.out" ]; then cat "$dir/$name.out"; fi
if [ -f "$dir/$name.exit" ]; then exit "$(cat "$dir/$name.exit")"; fi
if [ -f "$dir/$name.out" ]; then exit 0; fi
echo "ERROR: Could not open the input file ($target)" >&2
exit 2
`

// NewFPCalcStub writes a stub fpcalc executable into a temp directory.
func NewFPCalcStub(t testing.TB) *FPCalcStub {
	t.Helper()

	base := t.TempDir()
	binDir := filepath.Join(base, "bin")
	fixtures := filepath.Join(base, "fixtures")
	for _, dir := range []string{binDir, fixtures} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	binary := filepath.Join(binDir, "fpcalc")
	if err := os.WriteFile(binary, []byte(fmt.Sprintf(fpcalcStubScript, fixtures)), 0o755); err != nil {
		t.Fatalf("write fpcalc stub: %v", err)
	}
	return &FPCalcStub{t: t, Binary: binary, Dir: fixtures}
}

// OnPATH prepends the stub directory to PATH for the rest of the test.
func (s *FPCalcStub) OnPATH() {
	s.t.Helper()
	s.t.Setenv("PATH", filepath.Dir(s.Binary)+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// SetFingerprint makes the stub report duration and fingerprint for name.
func (s *FPCalcStub) SetFingerprint(name string, duration int, fingerprint string) {
	s.t.Helper()
	s.SetRaw(name, fmt.Sprintf("DURATION=%d\nFINGERPRINT=%s\n", duration, fingerprint))
}

// SetRaw makes the stub print stdout verbatim for name.
func (s *FPCalcStub) SetRaw(name, stdout string) {
	s.t.Helper()
	s.write(name+".out", stdout)
}

// SetFailure makes the stub exit with code after printing stderr for name.
func (s *FPCalcStub) SetFailure(name string, code int, stderr string) {
	s.t.Helper()
	s.write(name+".exit", strconv.Itoa(code))
	s.write(name+".stderr", stderr)
}

// SetSleep delays the stub's response for name.
func (s *FPCalcStub) SetSleep(name string, seconds int) {
	s.t.Helper()
	s.write(name+".sleep", strconv.Itoa(seconds))
}

// Calls returns the target paths of every invocation so far.
func (s *FPCalcStub) Calls() []string {
	return s.readLines("calls.log")
}

// Args returns the argument vectors of every invocation so far.
func (s *FPCalcStub) Args() []string {
	return s.readLines("args.log")
}

func (s *FPCalcStub) write(name, content string) {
	s.t.Helper()
	if err := os.WriteFile(filepath.Join(s.Dir, name), []byte(content), 0o644); err != nil {
		s.t.Fatalf("write stub fixture %s: %v", name, err)
	}
}

func (s *FPCalcStub) readLines(name string) []string {
	s.t.Helper()
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.t.Fatalf("read %s: %v", name, err)
	}
	trimmed := strings.TrimRight(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
