// Package deps checks that the external binaries dupefinder shells out to are
// installed and resolvable on PATH.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency dupefinder relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Resolved    string
	Detail      string
}

// MissingBinaryError reports a required binary that cannot be resolved.
// Nothing can be fingerprinted without it, so callers treat it as fatal.
type MissingBinaryError struct {
	Name    string
	Command string
	Hint    string
}

func (e *MissingBinaryError) Error() string {
	msg := fmt.Sprintf("%s not found: binary %q is not installed or not on PATH", e.Name, e.Command)
	if e.Hint != "" {
		msg += "; " + e.Hint
	}
	return msg
}

// FPCalcInstallHint is shown when the chromaprint tool is missing.
const FPCalcInstallHint = "install chromaprint (https://acoustid.org/chromaprint), e.g. `apt install libchromaprint-tools` or `brew install chromaprint`"

// FPCalcRequirement describes the fingerprinting tool.
func FPCalcRequirement(command string) Requirement {
	return Requirement{
		Name:        "fpcalc",
		Command:     command,
		Description: "Computes acoustic fingerprints (chromaprint)",
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Resolved = resolved
		results = append(results, status)
	}
	return results
}

// Require resolves a single requirement, returning a *MissingBinaryError when
// it is unavailable.
func Require(req Requirement, hint string) (string, error) {
	status := CheckBinaries([]Requirement{req})[0]
	if !status.Available {
		return "", &MissingBinaryError{Name: req.Name, Command: status.Command, Hint: hint}
	}
	return status.Resolved, nil
}
