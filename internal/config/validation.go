package config

import (
	"fmt"

	"choromap/internal/projection"
)

// Validate checks an application file after defaults have been applied.
func Validate(f *File) error {
	if err := ValidateOptions(f.Map); err != nil {
		return err
	}
	if f.Server.RateLimit < 0 {
		return fmt.Errorf("server.rateLimit: must not be negative")
	}
	if f.Server.CacheEntries < 0 {
		return fmt.Errorf("server.cacheEntries: must not be negative")
	}
	if f.Server.CacheTTL < 0 {
		return fmt.Errorf("server.cacheTTL: must not be negative")
	}
	return nil
}

// ValidateOptions rejects option values that cannot be drawn. Fill keys
// missing from the palette are allowed; they fall through to the default fill.
func ValidateOptions(o Options) error {
	if o.Scope == "" {
		return fmt.Errorf("%w: scope is empty", ErrInvalidOptions)
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("%w: negative size %gx%g", ErrInvalidOptions, o.Width, o.Height)
	}
	if o.AspectRatio < 0 {
		return fmt.Errorf("%w: negative aspectRatio", ErrInvalidOptions)
	}
	if o.SetProjection == nil && !projection.Known(o.Projection) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidOptions, projection.ErrUnknownProjection, o.Projection)
	}
	if r := o.ProjectionConfig.Rotation; len(r) > 3 {
		return fmt.Errorf("%w: rotation takes at most 3 angles", ErrInvalidOptions)
	}
	return nil
}
