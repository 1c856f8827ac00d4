package discover

import (
	"fmt"
)

// ConfigError reports an installation configuration that could not be read.
// It aborts the run.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("failed to read installation configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// RoleConflictError reports a role assigned to two different hosts. It
// aborts the run.
type RoleConflictError struct {
	Role        string
	Existing    string
	Conflicting string
}

func (e *RoleConflictError) Error() string {
	return fmt.Sprintf("role %s is assigned to both %s and %s", e.Role, e.Existing, e.Conflicting)
}
