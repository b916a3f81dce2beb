package model

// Status is the coarse state the core reports to the presentation layer.
// Nothing below this level ever reaches the UI as a raw error.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusOK      Status = "ok"
)
