package fpstore

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"
)

// rawKeyPrefix tags a JSON object key holding the base64 form of a path
// that is not valid UTF-8. A NUL byte cannot occur in a real path.
const rawKeyPrefix = "\x00b64:"

// encodeKey returns a JSON-safe object key for path.
func encodeKey(path string) string {
	if utf8.ValidString(path) {
		return path
	}
	return rawKeyPrefix + base64.StdEncoding.EncodeToString([]byte(path))
}

// decodeKey reverses encodeKey.
func decodeKey(key string) (string, error) {
	encoded, ok := strings.CutPrefix(key, rawKeyPrefix)
	if !ok {
		return key, nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode raw path key: %w", err)
	}
	return string(raw), nil
}
