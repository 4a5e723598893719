package conf

import (
	"encoding/base64"
	"fmt"

	"udpobfuscat/internal/transform"
)

// Filters is the `[filters]` section. HeadLen is a pointer since its
// absence (no Head wrapper at all) is distinct from an explicit 0 (Head
// wraps the transform but touches zero bytes).
type Filters struct {
	XorKey  string `toml:"xor_key"`
	HeadLen *int   `toml:"head_len"`
}

func (f *Filters) setDefaults() {}

func (f *Filters) validate() []error {
	var errs []error
	if f.XorKey != "" {
		if _, err := base64.StdEncoding.DecodeString(f.XorKey); err != nil {
			errs = append(errs, fmt.Errorf("xor_key is not valid base64: %w", err))
		}
	}
	if f.HeadLen != nil && *f.HeadLen < 0 {
		errs = append(errs, fmt.Errorf("head_len must not be negative"))
	}
	return errs
}

// Build constructs the configured Transform pipeline. Called after
// validate() has already confirmed the fields parse.
func (f *Filters) Build() (transform.Transform, error) {
	headLen := -1
	if f.HeadLen != nil {
		headLen = *f.HeadLen
	}
	return transform.FromFilters(f.XorKey, headLen)
}
