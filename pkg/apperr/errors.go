// Package apperr defines the error taxonomy described in spec §7.
//
// Every error the core produces is tagged with a Kind so that the HTTP
// boundary can apply the collapse rule from spec §6.3: only Auth maps
// to 401, store.ErrNotFound (an ownership-check miss) maps to 404, and
// everything else becomes a generic 500.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a tagged error.
type Kind string

const (
	KindAuth         Kind = "auth"
	KindCluster      Kind = "cluster"
	KindNotFound     Kind = "not_found"
	KindNotReady     Kind = "not_ready"
	KindNotSupported Kind = "not_supported"
	KindTimeout      Kind = "timeout"
	KindPersistence  Kind = "persistence"
	KindTransport    Kind = "transport"
	KindConfig       Kind = "config"
	KindConflict     Kind = "conflict"
)

// AuthSubKind distinguishes the two Auth failure modes (spec §7).
type AuthSubKind string

const (
	AuthToken AuthSubKind = "token"
	AuthLogin AuthSubKind = "login"
)

// ClusterOp identifies which hypervisor operation a Cluster error came
// from (spec §4.1, §7).
type ClusterOp string

const (
	ClusterOpStart    ClusterOp = "start"
	ClusterOpShutdown ClusterOp = "shutdown"
	ClusterOpStop     ClusterOp = "stop"
	ClusterOpReboot   ClusterOp = "reboot"
	ClusterOpCreate   ClusterOp = "create"
	ClusterOpDelete   ClusterOp = "delete"
	ClusterOpConfig   ClusterOp = "vm_config"
	ClusterOpStatus   ClusterOp = "status"
)

// Error is the tagged error type threaded through the whole system.
type Error struct {
	Kind Kind

	// Auth
	AuthSub AuthSubKind

	// Cluster
	ClusterOperation ClusterOp
	StatusCode       int
	Body             string

	// Timeout
	ElapsedSeconds float64

	msg string
	err error
}

func (e *Error) Error() string {
	if e.msg != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %v", e.msg, e.err)
		}
		return e.msg
	}
	if e.err != nil {
		return e.err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.err }

// As reports whether err (or something it wraps) is an *Error, and if
// so returns it.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, else "".
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

// NewAuth builds an Auth-kind error.
func NewAuth(sub AuthSubKind, msg string) *Error {
	return &Error{Kind: KindAuth, AuthSub: sub, msg: msg}
}

// NewCluster builds a Cluster-kind error tagged with the failing
// operation, the remote HTTP status and the verbatim remote body.
func NewCluster(op ClusterOp, statusCode int, body string) *Error {
	return &Error{
		Kind:             KindCluster,
		ClusterOperation: op,
		StatusCode:       statusCode,
		Body:             body,
		msg:              fmt.Sprintf("cluster operation %q failed with status %d", op, statusCode),
	}
}

// NewTimeout builds a Timeout-kind error carrying elapsed seconds.
func NewTimeout(elapsed float64) *Error {
	return &Error{
		Kind:           KindTimeout,
		ElapsedSeconds: elapsed,
		msg:            fmt.Sprintf("timed out after %.2fs", elapsed),
	}
}

// NewNotFound builds a NotFound-kind error.
func NewNotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, msg: msg}
}

// NewNotReady builds a NotReady-kind error.
func NewNotReady(msg string) *Error {
	return &Error{Kind: KindNotReady, msg: msg}
}

// NewNotSupported builds a NotSupported-kind error.
func NewNotSupported(msg string) *Error {
	return &Error{Kind: KindNotSupported, msg: msg}
}

// NewConflict builds a Conflict-kind error (e.g. unique constraint
// violation on registration).
func NewConflict(msg string) *Error {
	return &Error{Kind: KindConflict, msg: msg}
}

// WrapPersistence wraps an underlying driver error unchanged (spec §4.4
// "underlying persistence errors propagate unchanged"), tagging it so
// the HTTP boundary still knows to collapse it to 500.
func WrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindPersistence, err: err}
}

// WrapTransport wraps a transport-level error (DNS, dial, TLS, I/O).
func WrapTransport(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindTransport, err: err}
}

// WrapConfig wraps a config load/parse error.
func WrapConfig(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindConfig, err: err}
}
