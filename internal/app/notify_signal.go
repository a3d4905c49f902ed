package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// TouchNotifySignal writes a monotonic revision (timestamp) to the signal file
// so a Watcher in another storefront process sees that session or cart storage
// changed. Creates parent dir and file if needed. An empty path is a no-op.
func TouchNotifySignal(signalPath string) error {
	if signalPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(signalPath), 0755); err != nil {
		return fmt.Errorf("create signal file dir: %w", err)
	}
	rev := strconv.FormatInt(time.Now().UnixNano(), 10)
	if err := os.WriteFile(signalPath, []byte(rev), 0644); err != nil {
		return fmt.Errorf("write signal file: %w", err)
	}
	return nil
}
