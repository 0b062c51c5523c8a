package log

// Canonical field name constants for structured logging.
const (
	FieldComponent  = "component"
	FieldScope      = "scope"
	FieldProjection = "projection"
	FieldPlugin     = "plugin"
	FieldPath       = "path"
	FieldFormat     = "format"
	FieldDuration   = "duration"
	FieldCount      = "count"
)
