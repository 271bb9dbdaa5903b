package app

import (
	cliflag "github.com/kart-io/tutor-x/pkg/app/cliflag"
)

// CliOptions is the interface for CLI options.
// Any options struct implementing this interface can be used with App.
type CliOptions interface {
	// Flags returns the flags grouped by section name.
	Flags() cliflag.NamedFlagSets
	// Complete completes the options with defaults.
	Complete() error
	// Validate validates the options.
	Validate() error
}
