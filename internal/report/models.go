package report

// Report is the structured result of evaluating one snapshot. Line order
// is fixed by the aggregation sequence so rendered reports stay diffable.
type Report struct {
	// ServerName is the resolved server identifier for the heading.
	ServerName string

	// Lines are the per-metric results in their fixed order.
	Lines []Line

	// HasWarning and HasError record whether any metric contributed that
	// severity. Both can be true at once; warning contributions are
	// tracked even when an error is also present, because they drive
	// dispatch channel eligibility independently.
	HasWarning bool
	HasError   bool
}

// Overall returns the most crucial severity across all lines.
func (r *Report) Overall() Severity {
	if r.HasError {
		return Error
	}
	if r.HasWarning {
		return Warning
	}
	return OK
}

// Line is one metric's contribution to the report.
type Line struct {
	Label    string
	Value    string
	Severity Severity

	// Detail holds extra rows rendered beneath the metric, currently the
	// gluster peer states.
	Detail []string

	// Volumes holds the per-volume drill-down for the gluster volumes
	// metric.
	Volumes []VolumeDetail
}

// VolumeDetail describes one unhealthy gluster volume. Slices are already
// filtered of blank placeholder entries; empty slices are not rendered.
type VolumeDetail struct {
	Name               string
	UnhealthyBricks    []string
	UnhealthyProcesses []string
	ErrorsWarnings     []string
	ActiveTasks        []string
}
