package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"dupefinder/internal/config"
	"dupefinder/internal/deps"
	"dupefinder/internal/fpcalc"
)

// RequireFingerprinter resolves the configured fpcalc binary. It returns a
// *deps.MissingBinaryError when the tool cannot be found.
func RequireFingerprinter(cfg *config.Config) (string, error) {
	return deps.Require(deps.FPCalcRequirement(cfg.FPCalc.Binary), deps.FPCalcInstallHint)
}

// CheckFingerprinter verifies fpcalc resolves and answers a version probe.
func CheckFingerprinter(ctx context.Context, cfg *config.Config) Result {
	const name = "fpcalc"

	resolved, err := RequireFingerprinter(cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	version, err := fpcalc.New(resolved, cfg.FPCalc.LengthSeconds, cfg.FingerprintTimeout()).Version(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", resolved, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (version %s)", resolved, version)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}
