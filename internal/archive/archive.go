// Package archive stores finished exports outside the process: on the local
// filesystem or in an S3 bucket.
package archive

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Store receives exported files. It satisfies export.Sink.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
}

// cleanKey rejects keys that would escape the archive root
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("archive key is empty")
	}
	clean := path.Clean("/" + key)[1:]
	if clean == "" || clean != strings.TrimLeft(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return clean, nil
}

func normalizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func applyPrefix(prefix, key string) string {
	cleanPrefix := strings.Trim(prefix, "/")
	cleanKey := strings.TrimLeft(key, "/")
	if cleanPrefix == "" {
		return cleanKey
	}
	if cleanKey == "" {
		return cleanPrefix
	}
	return cleanPrefix + "/" + cleanKey
}
