package fpcalc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultLength is the number of seconds of audio analysed per file.
	DefaultLength = 120
	// DefaultTimeout bounds a single fpcalc invocation.
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrIncompleteOutput reports fpcalc output lacking DURATION or FINGERPRINT.
	ErrIncompleteOutput = errors.New("fpcalc output missing duration or fingerprint")
	// ErrTimeout reports an invocation that exceeded its timeout.
	ErrTimeout = errors.New("fpcalc timed out")
)

// Result is the parsed output of one fpcalc run.
type Result struct {
	Duration    int
	Fingerprint string
}

// Client runs fpcalc with a fixed binary, analysis length, and timeout.
type Client struct {
	binary  string
	length  int
	timeout time.Duration
}

// New creates a Client. Zero values fall back to fpcalc on PATH, DefaultLength,
// and DefaultTimeout.
func New(binary string, length int, timeout time.Duration) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "fpcalc"
	}
	if length <= 0 {
		length = DefaultLength
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{binary: binary, length: length, timeout: timeout}
}

// Binary returns the configured executable.
func (c *Client) Binary() string { return c.binary }

// Args returns the argument vector used for path.
func (c *Client) Args(path string) []string {
	return []string{"-raw", "-length", strconv.Itoa(c.length), path}
}

// Fingerprint executes fpcalc against path and parses its output.
func (c *Client) Fingerprint(ctx context.Context, path string) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("fpcalc: empty path")
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.binary, c.Args(path)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return Result{}, fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			return Result{}, fmt.Errorf("fpcalc: %w", err)
		}
		return Result{}, fmt.Errorf("fpcalc: %w: %s", err, detail)
	}

	return ParseOutput(stdout.Bytes())
}

// Version runs "fpcalc -version" and returns the reported version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(runCtx, c.binary, "-version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("fpcalc -version: %w", err)
	}
	line := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = strings.TrimSpace(line[:idx])
	}
	line = strings.TrimPrefix(line, "fpcalc version ")
	if line == "" {
		return "", errors.New("fpcalc -version: empty output")
	}
	return line, nil
}

// ParseOutput extracts DURATION and FINGERPRINT from fpcalc stdout. Other
// lines are ignored. A fractional duration is truncated to whole seconds.
func ParseOutput(output []byte) (Result, error) {
	var (
		result         Result
		hasDuration    bool
		hasFingerprint bool
	)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "DURATION":
			duration, err := parseDuration(value)
			if err != nil {
				return Result{}, fmt.Errorf("%w: invalid duration %q", ErrIncompleteOutput, value)
			}
			result.Duration = duration
			hasDuration = true
		case "FINGERPRINT":
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			result.Fingerprint = value
			hasFingerprint = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("read fpcalc output: %w", err)
	}

	if !hasDuration || !hasFingerprint {
		return Result{}, ErrIncompleteOutput
	}
	return result, nil
}

func parseDuration(value string) (int, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("parse duration %q", value)
	}
	return int(f), nil
}
