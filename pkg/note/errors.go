// Package note error types.
//
// Each failure mode gets its own structured type so callers can branch with
// errors.As and surface actionable detail. Only imbalance and index errors
// abort an operation outright; an unauthorized signer is an expected,
// recoverable condition (the caller simply picks a different signer), and
// incomplete signing is not an error at all - the validator reports it as an
// ordinary value.
package note

import "fmt"

// ImbalancedError is returned when a transaction's consumed value does not
// equal its created value. It carries both totals so callers can present the
// delta.
type ImbalancedError struct {
	InputTotal  uint64 // Sum of spend note values
	OutputTotal uint64 // Sum of output values
}

func (e *ImbalancedError) Error() string {
	return fmt.Sprintf("imbalanced transaction: inputs total %d, outputs total %d (delta %+d)",
		e.InputTotal, e.OutputTotal, e.Delta())
}

// Delta returns inputs minus outputs. Positive means value would be
// destroyed; negative means value would be created from nothing.
func (e *ImbalancedError) Delta() int64 {
	return int64(e.InputTotal) - int64(e.OutputTotal)
}

// SpendIndexError is returned when a spend index does not address any spend
// in the transaction. This indicates caller wiring errors, not user input.
type SpendIndexError struct {
	Index      int // Requested index
	SpendCount int // Number of spends in the transaction
}

func (e *SpendIndexError) Error() string {
	return fmt.Sprintf("spend index %d out of range (have %d spends)", e.Index, e.SpendCount)
}

// UnauthorizedSignerError is returned when a pubkey outside a spend's policy
// attempts to sign. Always recoverable: choose a signer the policy names.
type UnauthorizedSignerError struct {
	SpendIndex int       // Spend whose policy rejected the key
	PubKey     PublicKey // The rejected key
}

func (e *UnauthorizedSignerError) Error() string {
	return fmt.Sprintf("pubkey %s not authorized for spend %d", e.PubKey, e.SpendIndex)
}

// LockError is returned when a lock or its policy is structurally invalid
// (bad threshold, duplicate keys, unknown lock kind).
type LockError struct {
	Reason string
}

func (e *LockError) Error() string {
	return "invalid lock: " + e.Reason
}

// AssembleError is returned when transaction construction preconditions are
// violated before balance is even considered (no notes, no outputs).
type AssembleError struct {
	Message string
}

func (e *AssembleError) Error() string {
	return "assemble: " + e.Message
}

// CombineError is returned when partially signed copies cannot be merged,
// either because they describe different transactions or because two copies
// carry conflicting signatures for the same key.
type CombineError struct {
	Message string
}

func (e *CombineError) Error() string {
	return "combine: " + e.Message
}

// ParseError is returned when imported data is not a valid transaction
// envelope.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse: %s: %v", e.Message, e.Cause)
	}
	return "parse: " + e.Message
}

func (e *ParseError) Unwrap() error { return e.Cause }
