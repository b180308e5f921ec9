package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ActivityLogFile is the file activity entries are appended to, under
// the configured log directory.
const ActivityLogFile = "activity_log.txt"

// LogActivity returns a task that appends one activity line to the
// activity log under dir, creating the directory on first use.
func LogActivity(dir, userEmail, activity string) Func {
	return func(ctx context.Context) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		path := filepath.Join(dir, ActivityLogFile)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open activity log: %w", err)
		}
		defer f.Close()

		line := fmt.Sprintf("User %s activity: %s\n", userEmail, activity)
		if _, err := f.WriteString(line); err != nil {
			return fmt.Errorf("failed to append activity entry: %w", err)
		}
		return nil
	}
}

// CompileIntelReport returns a task that simulates report compilation.
// The delay stands in for real work; callers pass a short delay in
// tests.
func CompileIntelReport(reportName, recipientEmail string, delay time.Duration) Func {
	return func(ctx context.Context) error {
		select {
		case <-time.After(delay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
