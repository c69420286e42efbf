package internal

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Overridable in tests.
var (
	lookPath       = exec.LookPath
	commandContext = exec.CommandContext
)

// ResolveSecretReference resolves 1Password secret references of the
// form op://vault/item/field through the op CLI. Plain values pass
// through unchanged. The second return reports whether the value was a
// reference, so callers can log the resolution without echoing the key.
func ResolveSecretReference(ctx context.Context, value string) (string, bool, error) {
	if !strings.HasPrefix(value, "op://") {
		return value, false, nil
	}

	if _, err := lookPath("op"); err != nil {
		return "", true, fmt.Errorf("1Password CLI (op) not found in PATH: %w", err)
	}

	out, err := commandContext(ctx, "op", "read", value).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", true, fmt.Errorf("reading secret from 1Password: %s", string(exitErr.Stderr))
		}
		return "", true, fmt.Errorf("reading secret from 1Password: %w", err)
	}

	return strings.TrimSpace(string(out)), true, nil
}
