package discovery_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"dupefinder/internal/config"
	"dupefinder/internal/discovery"
	"dupefinder/internal/testsupport"
)

func TestFindFiltersByExtensionCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	testsupport.AudioTree(t, root,
		"a.mp3",
		"B.FLAC",
		"album/c.Ogg",
		"album/disc 2/d.m4a",
		"notes.txt",
		"cover.jpg",
		"album/mp3",
		"e.mp3.bak",
	)

	finder := discovery.New(config.DefaultExtensions, nil)
	got, err := finder.Find(context.Background(), root)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}

	want := []string{
		filepath.Join(root, "B.FLAC"),
		filepath.Join(root, "a.mp3"),
		filepath.Join(root, "album", "c.Ogg"),
		filepath.Join(root, "album", "disc 2", "d.m4a"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected files:\n got %v\nwant %v", got, want)
	}
}

func TestFindRelativeRootYieldsRelativePaths(t *testing.T) {
	root := t.TempDir()
	testsupport.AudioTree(t, root, "x/a.wav")
	t.Chdir(root)

	got, err := discovery.New([]string{".wav"}, nil).Find(context.Background(), ".")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if len(got) != 1 || got[0] != filepath.Join("x", "a.wav") {
		t.Fatalf("expected relative path, got %v", got)
	}
}

func TestFindFollowsSymlinkedRoot(t *testing.T) {
	target := t.TempDir()
	testsupport.AudioTree(t, target, "a.mp3", "album/b.flac")
	link := filepath.Join(t.TempDir(), "Music")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	got, err := discovery.New(config.DefaultExtensions, nil).Find(context.Background(), link)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	want := []string{
		filepath.Join(link, "a.mp3"),
		filepath.Join(link, "album", "b.flac"),
	}
	if !slices.Equal(got, want) {
		t.Fatalf("expected paths under the link spelling, got %v want %v", got, want)
	}
}

func TestFindDoesNotFollowNestedDirectorySymlinks(t *testing.T) {
	outside := t.TempDir()
	testsupport.AudioTree(t, outside, "x.mp3")
	root := t.TempDir()
	testsupport.AudioTree(t, root, "a.mp3")
	if err := os.Symlink(outside, filepath.Join(root, "linked")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	got, err := discovery.New([]string{".mp3"}, nil).Find(context.Background(), root)
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if !slices.Equal(got, []string{filepath.Join(root, "a.mp3")}) {
		t.Fatalf("nested directory link should not be walked, got %v", got)
	}
}

func TestFindMissingRoot(t *testing.T) {
	_, err := discovery.New([]string{".mp3"}, nil).Find(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestFindHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	testsupport.AudioTree(t, root, "a.mp3")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := discovery.New([]string{".mp3"}, nil).Find(ctx, root); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestMatches(t *testing.T) {
	finder := discovery.New([]string{"MP3", ".flac", " "}, nil)
	cases := map[string]bool{
		"song.mp3":  true,
		"SONG.MP3":  true,
		"song.Flac": true,
		".mp3":      true,
		"song.wav":  false,
		"song.mp3x": false,
	}
	for name, want := range cases {
		if got := finder.Matches(name); got != want {
			t.Fatalf("Matches(%q) = %v, want %v", name, got, want)
		}
	}
}
