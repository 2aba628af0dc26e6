package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion is the schema version new SymbolSpec entries are
// stamped with when no explicit value is configured.
const CurrentSchemaVersion = "1.0.0"

// supportedSchemaRange is the range of SymbolSpec schema versions this
// runtime build can load. Widen it when a config migration lands.
const supportedSchemaRange = ">= 1.0.0, < 2.0.0"

// ValidateSchemaVersion rejects a SymbolSpec whose schema_version falls
// outside supportedSchemaRange, so a config written for a future or
// long-retired schema fails fast at load time instead of misbehaving once
// wired into an Engine.
func ValidateSchemaVersion(version string) error {
	if version == "" {
		version = CurrentSchemaVersion
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q: %w", version, err)
	}

	constraint, err := semver.NewConstraint(supportedSchemaRange)
	if err != nil {
		return fmt.Errorf("invalid supported schema range %q: %w", supportedSchemaRange, err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("schema_version %s is not supported (expected %s)", version, supportedSchemaRange)
	}
	return nil
}
