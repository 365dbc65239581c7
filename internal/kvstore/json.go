package kvstore

import (
	"encoding/json"
	"fmt"
)

// LoadJSON reads the blob under key and unmarshals it into T.
// A missing key surfaces as ErrNotFound so callers can start cold.
func LoadJSON[T any](s Store, key string) (T, error) {
	var out T
	raw, err := s.Get(key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("decoding %s: %w", key, err)
	}
	return out, nil
}

// SaveJSON marshals v and overwrites the blob under key.
func SaveJSON[T any](s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(key, string(raw))
}

// EncodeJSON marshals v to the string form Set expects, for callers
// that stage writes (e.g. through a coalescer) instead of writing
// immediately.
func EncodeJSON[T any](v T) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding value: %w", err)
	}
	return string(raw), nil
}
