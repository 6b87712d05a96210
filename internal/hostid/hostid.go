// Package hostid resolves the identity of the probing machine.
package hostid

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Resolve returns override when set, else the fully qualified name from
// `hostname -f`, else the kernel hostname.
func Resolve(ctx context.Context, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if out, err := exec.CommandContext(ctx, "hostname", "-f").Output(); err == nil {
		if fqdn := strings.TrimSpace(string(out)); fqdn != "" {
			return fqdn, nil
		}
	}

	name, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("resolve hostname: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("resolve hostname: empty hostname")
	}
	return name, nil
}
