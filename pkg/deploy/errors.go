package deploy

import (
	"errors"
	"fmt"
)

// ValidationError is returned for a malformed DesiredSpec before any cluster call is made.
type ValidationError struct {
	Name string
	Err  error
}

func (err *ValidationError) Error() string {
	if err.Name == "" {
		return fmt.Sprintf("invalid desired spec: %v", err.Err)
	}
	return fmt.Sprintf("invalid desired spec %q: %v", err.Name, err.Err)
}

func (err *ValidationError) Unwrap() error { return err.Err }

// ClusterOperationError wraps any cluster client failure other than not-found.
// Action is the description of the operation that failed and Output holds any
// output the client captured while performing it.
type ClusterOperationError struct {
	Action string
	Output string
	Err    error
}

func (err *ClusterOperationError) Error() string {
	msg := fmt.Sprintf("%s: %v", err.Action, err.Err)
	if err.Output != "" {
		msg += ": output: " + err.Output
	}
	return msg
}

func (err *ClusterOperationError) Unwrap() error { return err.Err }

// ResponseDecodeError means the client reported success but its document could not be understood.
type ResponseDecodeError struct {
	Name string
	Err  error
}

func (err *ResponseDecodeError) Error() string {
	return fmt.Sprintf("failed to decode response for deployment %s: %v", err.Name, err.Err)
}

func (err *ResponseDecodeError) Unwrap() error { return err.Err }

// outputter is implemented by client errors that carry the raw output of the failed call.
type outputter interface {
	Output() string
}

func clusterError(action string, err error) error {
	var decodeErr *ResponseDecodeError
	if errors.As(err, &decodeErr) {
		return err
	}

	opErr := ClusterOperationError{Action: action, Err: err}

	var out outputter
	if errors.As(err, &out) {
		opErr.Output = out.Output()
	}

	return &opErr
}
