package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// The persisted form is serialize-to-JSON, byte-wise XOR with a fixed secret,
// then base64. The cipher is reversible obfuscation, not a security control.

// xorCipher applies the keyed XOR; running it twice with the same key is the
// identity.
func xorCipher(data []byte, key string) []byte {
	if len(key) == 0 {
		return data
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}

// encode serializes v into the obfuscated text form.
func encode(v any, key string) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(xorCipher(raw, key)), nil
}

// decode reverses encode. Any malformed input (bad base64, wrong key, bad
// JSON) is an error; callers treat it as "no data".
func decode(s, key string, v any) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("base64 decode: %w", err)
	}
	if err := json.Unmarshal(xorCipher(raw, key), v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
