package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestCompareCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"compare", env.paths["a.mp3"], env.paths["b.flac"]}, "", env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "3:00")
	requireContains(t, out, "3:01")
	requireContains(t, out, "Similarity: 100.0% (threshold 90.0%): match")

	out, _, err = runCLI(t, []string{"compare", env.paths["a.mp3"], env.paths["c.ogg"]}, "", env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "Similarity: 0.0% (threshold 90.0%): not a match")

	if _, err := os.Stat(filepath.Join(env.root, "fp.json")); !os.IsNotExist(err) {
		t.Fatalf("compare must not write a cache, stat err %v", err)
	}
}

func TestCompareCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addTrack(t, "d.m4a", 90, "1,2,3,4,5,6,70,80,90,100")

	out, _, err := runCLI(t, []string{"compare", "--json", "--threshold", "0.5", env.paths["a.mp3"], env.paths["d.m4a"]}, "", env.configPath)
	if err != nil {
		t.Fatalf("compare --json: %v", err)
	}
	var result compareResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode compare result: %v (%q)", err, out)
	}
	if result.Percent != 60 || !result.Match || result.Threshold != 0.5 {
		t.Fatalf("unexpected compare result: %+v", result)
	}
}

func TestCompareCommandFailsForUnreadableFile(t *testing.T) {
	env := setupCLITestEnv(t)
	env.stub.SetFailure("a.mp3", 1, "ERROR: Error decoding audio frame")

	_, _, err := runCLI(t, []string{"compare", env.paths["a.mp3"], env.paths["b.flac"]}, "", env.configPath)
	if err == nil {
		t.Fatal("expected compare to fail")
	}
	requireContains(t, err.Error(), "exit")
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{0: "0:00", 59: "0:59", 61: "1:01", 3600: "60:00"}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Fatalf("formatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}
