package datasource

import "fmt"

// CapabilityError reports an operation invoked on a data source that does not
// support it. Accessors fail fast with this error instead of returning empty
// data.
type CapabilityError struct {
	Source     string
	Capability Capability
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("data source %q does not support %q", e.Source, e.Capability)
}

// NotFoundError reports an unknown data source id, or a resource root that
// does not exist within a known source. Either way the operation aborts
// before any traversal.
type NotFoundError struct {
	Source string
	Path   string
}

func (e *NotFoundError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("no resource at %q", e.Path)
	}
	if e.Path == "" {
		return fmt.Sprintf("no data source with id %q", e.Source)
	}
	return fmt.Sprintf("data source %q has no resource at %q", e.Source, e.Path)
}
