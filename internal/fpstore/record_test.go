package fpstore

import (
	"encoding/json"
	"testing"
)

func TestRecordJSONShape(t *testing.T) {
	data, err := json.Marshal(Record{Duration: 12, Fingerprint: "1,-2"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `[12,"1,-2"]` {
		t.Fatalf("unexpected encoding %s", data)
	}

	cases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", `[3, "7"]`, false},
		{"object", `{"duration": 3}`, true},
		{"short", `[3]`, true},
		{"long", `[3, "7", 1]`, true},
		{"string duration", `["3", "7"]`, true},
		{"null duration", `[null, "7"]`, true},
		{"float duration", `[215.0, "7"]`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var rec Record
			err := json.Unmarshal([]byte(tc.input), &rec)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error for %s", tc.input)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRecordDurationTruncatesFractions(t *testing.T) {
	cases := map[string]int{
		`[215, "7"]`:    215,
		`[215.0, "7"]`:  215,
		`[215.9, "7"]`:  215,
		`[2.15e2, "7"]`: 215,
	}
	for input, want := range cases {
		var rec Record
		if err := json.Unmarshal([]byte(input), &rec); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if rec.Duration != want {
			t.Fatalf("%s: duration %d, want %d", input, rec.Duration, want)
		}
	}
}

func TestKeyEncoding(t *testing.T) {
	cases := []struct {
		path    string
		encoded bool
	}{
		{"/music/a.mp3", false},
		{"/music/café.mp3", false},
		{"/music/caf\xe9.mp3", true},
		{"/music/\xff\xfe", true},
	}
	for _, tc := range cases {
		key := encodeKey(tc.path)
		if got := key != tc.path; got != tc.encoded {
			t.Fatalf("encodeKey(%q) = %q, encoded=%v want %v", tc.path, key, got, tc.encoded)
		}
		back, err := decodeKey(key)
		if err != nil {
			t.Fatalf("decodeKey(%q): %v", key, err)
		}
		if back != tc.path {
			t.Fatalf("key round trip: got %q want %q", back, tc.path)
		}
	}
	if _, err := decodeKey(rawKeyPrefix + "!!!"); err == nil {
		t.Fatal("expected invalid base64 key to fail")
	}
}
