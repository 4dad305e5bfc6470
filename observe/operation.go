package observe

// Operation identifies a heritage operation for telemetry purposes.
type Operation struct {
	Name     string // Operation name (required), e.g. "search_filtered"
	Endpoint string // Upstream endpoint key (optional)
}

// SpanName returns the deterministic span name for this operation.
// Format: heritage.<name>
func (o Operation) SpanName() string {
	return "heritage." + o.Name
}

// Validate reports whether the operation can be recorded.
func (o Operation) Validate() error {
	if o.Name == "" {
		return ErrMissingOperationName
	}
	return nil
}
