package fpstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Record is one file's acoustic signature. Duration is advisory and never
// used for matching.
type Record struct {
	Duration    int
	Fingerprint string
}

// MarshalJSON encodes the record as a two-element [duration, fingerprint] array.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([2]any{r.Duration, r.Fingerprint}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes a [duration, fingerprint] array. A fractional
// duration is truncated to whole seconds.
func (r *Record) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("record: expected [duration, fingerprint], got %d elements", len(pair))
	}
	if bytes.HasPrefix(bytes.TrimSpace(pair[0]), []byte(`"`)) {
		return fmt.Errorf("record duration: expected a number, got %s", pair[0])
	}
	var rec Record
	var duration json.Number
	if err := json.Unmarshal(pair[0], &duration); err != nil {
		return fmt.Errorf("record duration: %w", err)
	}
	seconds, err := parseDuration(duration)
	if err != nil {
		return err
	}
	rec.Duration = seconds
	if err := json.Unmarshal(pair[1], &rec.Fingerprint); err != nil {
		return fmt.Errorf("record fingerprint: %w", err)
	}
	*r = rec
	return nil
}

func parseDuration(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("record duration: invalid value %s", n)
	}
	return int(f), nil
}
