package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const providerCheckTimeout = 30 * time.Second

// CheckAPIKey verifies that a key is available for the provider.
func CheckAPIKey(provider, key string) Result {
	name := "API key"
	if strings.TrimSpace(key) == "" {
		return Result{Name: name, Detail: fmt.Sprintf("missing for %s (set settings.api_key or the provider environment variable)", provider)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("configured for %s", provider)}
}

// CheckProvider verifies that the provider is reachable and accepts the key.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckProvider(ctx context.Context, provider string, pinger Pinger) Result {
	name := "Provider"
	checkCtx, cancel := context.WithTimeout(ctx, providerCheckTimeout)
	defer cancel()

	started := time.Now()
	if err := pinger.Ping(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeProviderError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable (%s)", provider, time.Since(started).Round(time.Millisecond))}
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

// summarizeProviderError produces a human-readable summary for provider check failures.
func summarizeProviderError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (provider unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "check timed out (provider unreachable)"
	}
	return err.Error()
}
