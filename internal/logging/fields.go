package logging

// Common structured log field keys to keep logs searchable/consistent.
const (
	FieldService    = "service"
	FieldPartition  = "partition"
	FieldTeam       = "team"
	FieldLabel      = "label"
	FieldAttempt    = "attempt"
	FieldTable      = "table"
	FieldCacheAgeMS = "cache_age_ms"
	FieldCacheHit   = "cache_hit"
	FieldCount      = "count"
	FieldDropped    = "dropped"
	FieldDurationMS = "duration_ms"
	FieldPath       = "path"
	FieldMethod     = "method"
	FieldStatusCode = "status_code"
)
