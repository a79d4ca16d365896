package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"dupefinder/internal/fingerprint"
	"dupefinder/internal/matcher"
)

// palette holds the coloured operator tags.
type palette struct {
	scan    *color.Color
	info    *color.Color
	found   *color.Color
	ok      *color.Color
	cached  *color.Color
	skip    *color.Color
	removed *color.Color
	match   *color.Color
	warn    *color.Color
	err     *color.Color
	heading *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		scan:    mk(color.FgCyan),
		info:    mk(color.FgCyan),
		found:   mk(color.FgGreen),
		ok:      mk(color.FgGreen),
		cached:  mk(color.FgBlue),
		skip:    mk(color.FgYellow),
		removed: mk(color.FgYellow),
		match:   mk(color.FgMagenta),
		warn:    mk(color.FgYellow),
		err:     mk(color.FgRed),
		heading: mk(color.FgCyan, color.Bold),
	}
}

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// consoleReporter renders run events as tagged console lines.
type consoleReporter struct {
	out      io.Writer
	colors   palette
	folder   string
	progress bool
	bar      *progressbar.ProgressBar
}

func newConsoleReporter(out io.Writer, folder string, progress bool) *consoleReporter {
	return &consoleReporter{
		out:      out,
		colors:   newPalette(shouldColorize(out)),
		folder:   folder,
		progress: progress,
	}
}

func (r *consoleReporter) line(tag *color.Color, label, format string, args ...any) {
	r.clearBar()
	fmt.Fprintf(r.out, "%s %s\n", tag.Sprint(label), fmt.Sprintf(format, args...))
}

func (r *consoleReporter) heading(title string) {
	r.clearBar()
	fmt.Fprintln(r.out, r.colors.heading.Sprintf("== %s ==", title))
}

func (r *consoleReporter) Checking() {
	r.line(r.colors.info, "[INFO]", "Checking for missing files in fingerprint cache...")
}

func (r *consoleReporter) CacheLoadFailed(err error) {
	r.line(r.colors.warn, "[WARN]", "Failed to load cache: %v", err)
}

func (r *consoleReporter) StaleRemoved(path string) {
	r.line(r.colors.removed, "[REMOVED]", "File missing, removed from cache: %s", path)
}

func (r *consoleReporter) Reconciled(removed int) {
	if removed == 0 {
		return
	}
	r.line(r.colors.info, "[CLEAN]", "Removed %d missing file(s) from cache", removed)
}

func (r *consoleReporter) FilesFound(count int) {
	r.line(r.colors.scan, "[SCAN]", "Searching folder: %s", r.folder)
	r.line(r.colors.found, "[INFO]", "Found %d audio files.", count)
	fmt.Fprintln(r.out)
	if r.progress && count > 0 {
		r.bar = progressbar.NewOptions(count,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription("fingerprinting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionClearOnFinish(),
		)
	}
}

func (r *consoleReporter) Fingerprinted(path string) {
	if r.bar != nil {
		_ = r.bar.Add(1)
		return
	}
	r.line(r.colors.ok, "[OK]", "Fingerprinted: %s", path)
}

func (r *consoleReporter) Cached(path string) {
	if r.bar != nil {
		_ = r.bar.Add(1)
		return
	}
	r.line(r.colors.cached, "[CACHED]", "Using cached fingerprint: %s", path)
}

func (r *consoleReporter) Skipped(path string, err error) {
	reason := ""
	var miss *fingerprint.MissError
	if errors.As(err, &miss) {
		reason = fmt.Sprintf(" (%s: %v)", miss.Reason, miss.Err)
	} else if err != nil {
		reason = fmt.Sprintf(" (%v)", err)
	}
	r.line(r.colors.skip, "[SKIP]", "Could not fingerprint: %s%s", path, reason)
	if r.bar != nil {
		_ = r.bar.Add(1)
	}
}

func (r *consoleReporter) CacheSaved(newCount int, final bool) {
	if final {
		r.finishBar()
		r.line(r.colors.info, "[INFO]", "Saved fingerprint cache (final)")
		return
	}
	r.line(r.colors.info, "[INFO]", "Saved fingerprint cache after %d new files", newCount)
}

func (r *consoleReporter) CacheSaveFailed(err error) {
	r.line(r.colors.err, "[ERROR]", "Failed to save cache: %v", err)
}

func (r *consoleReporter) ScanStarted(entries, pairs int) {
	r.finishBar()
	fmt.Fprintln(r.out)
	r.heading("Scanning for duplicates...")
	fmt.Fprintln(r.out)
	r.line(r.colors.info, "[INFO]", "Comparing %d pairs across %d cached files", pairs, entries)
}

func (r *consoleReporter) Matched(m matcher.Match) {
	r.clearBar()
	fmt.Fprintln(r.out, r.colors.match.Sprintf("[MATCH %s%%]", matcher.FormatPercent(m.Score)))
	fmt.Fprintf(r.out, "  ├── %s\n", m.A)
	fmt.Fprintf(r.out, "  └── %s\n\n", m.B)
}

func (r *consoleReporter) ScanFinished(logPath string, matches int) {
	r.line(r.colors.info, "[INFO]", "Duplicate scan complete, %d match(es). Results saved to %s", matches, logPath)
}

func (r *consoleReporter) clearBar() {
	if r.bar != nil {
		_ = r.bar.Clear()
	}
}

func (r *consoleReporter) finishBar() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}
