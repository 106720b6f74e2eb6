package remote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures talking to the remote store
type ErrorKind string

const (
	// KindNetwork is a transport failure with no response
	KindNetwork ErrorKind = "network"
	// KindRejected is a non-success status with a response
	KindRejected ErrorKind = "rejected"
	// KindMalformed is a response that could not be decoded into the expected shape
	KindMalformed ErrorKind = "malformed"
	// KindUnknown is anything else
	KindUnknown ErrorKind = "unknown"
)

// NetworkError reports a request that never produced a response
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network failure: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RejectionError reports a non-2xx response
type RejectionError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
}

func (e *RejectionError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: rejected with status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: rejected with status %d: %s", e.Op, e.URL, e.StatusCode, e.Body)
}

// MalformedError reports a 2xx response whose body did not decode
type MalformedError struct {
	Op  string
	URL string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("%s %s: malformed response: %v", e.Op, e.URL, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Kind classifies err, looking through wrapping
func Kind(err error) ErrorKind {
	var (
		netErr       *NetworkError
		rejectErr    *RejectionError
		malformedErr *MalformedError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &rejectErr):
		return KindRejected
	case errors.As(err, &malformedErr):
		return KindMalformed
	default:
		return KindUnknown
	}
}

// StatusCode returns the HTTP status of a rejection, or 0
func StatusCode(err error) int {
	var rejectErr *RejectionError
	if errors.As(err, &rejectErr) {
		return rejectErr.StatusCode
	}
	return 0
}
