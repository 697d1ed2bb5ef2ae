// Package status defines the protocol's native status-code vocabulary. Every
// value read from or written to the address space carries one of these codes,
// and every failed protocol call is reported with one instead of a Go error.
package status

import (
	"context"
	"errors"
	"fmt"
)

// Code is a 32-bit protocol status code. The two most significant bits carry
// the severity: 00 good, 01 uncertain, 10 bad.
type Code uint32

const (
	Good      Code = 0x00000000
	Uncertain Code = 0x40000000
	Bad       Code = 0x80000000

	BadUnexpectedError        Code = 0x80010000
	BadInternalError          Code = 0x80020000
	BadOutOfMemory            Code = 0x80030000
	BadCommunicationError     Code = 0x80050000
	BadEncodingError          Code = 0x80060000
	BadDecodingError          Code = 0x80070000
	BadTimeout                Code = 0x800A0000
	BadShutdown               Code = 0x800C0000
	BadTooManyOperations      Code = 0x80100000
	BadNothingToDo            Code = 0x800F0000
	BadNodeIDInvalid          Code = 0x80330000
	BadNodeIDUnknown          Code = 0x80340000
	BadAttributeIDInvalid     Code = 0x80350000
	BadNotWritable            Code = 0x803B0000
	BadNotReadable            Code = 0x803A0000
	BadOutOfRange             Code = 0x803C0000
	BadNotSupported           Code = 0x803D0000
	BadNodeIDExists           Code = 0x805E0000
	BadTypeDefinitionInvalid  Code = 0x80630000
	BadReferenceTypeIDInvalid Code = 0x804C0000
	BadTypeMismatch           Code = 0x80740000
	BadMethodInvalid          Code = 0x80750000
	BadArgumentsMissing       Code = 0x80760000
	BadInvalidArgument        Code = 0x80AB0000
	BadSubscriptionIDInvalid  Code = 0x80280000
	BadSessionClosed          Code = 0x80260000
)

var names = map[Code]string{
	Good:                      "Good",
	Uncertain:                 "Uncertain",
	Bad:                       "Bad",
	BadUnexpectedError:        "BadUnexpectedError",
	BadInternalError:          "BadInternalError",
	BadOutOfMemory:            "BadOutOfMemory",
	BadCommunicationError:     "BadCommunicationError",
	BadEncodingError:          "BadEncodingError",
	BadDecodingError:          "BadDecodingError",
	BadTimeout:                "BadTimeout",
	BadShutdown:               "BadShutdown",
	BadTooManyOperations:      "BadTooManyOperations",
	BadNothingToDo:            "BadNothingToDo",
	BadNodeIDInvalid:          "BadNodeIdInvalid",
	BadNodeIDUnknown:          "BadNodeIdUnknown",
	BadAttributeIDInvalid:     "BadAttributeIdInvalid",
	BadNotWritable:            "BadNotWritable",
	BadNotReadable:            "BadNotReadable",
	BadOutOfRange:             "BadOutOfRange",
	BadNotSupported:           "BadNotSupported",
	BadNodeIDExists:           "BadNodeIdExists",
	BadTypeDefinitionInvalid:  "BadTypeDefinitionInvalid",
	BadReferenceTypeIDInvalid: "BadReferenceTypeIdInvalid",
	BadTypeMismatch:           "BadTypeMismatch",
	BadMethodInvalid:          "BadMethodInvalid",
	BadArgumentsMissing:       "BadArgumentsMissing",
	BadInvalidArgument:        "BadInvalidArgument",
	BadSubscriptionIDInvalid:  "BadSubscriptionIdInvalid",
	BadSessionClosed:          "BadSessionClosed",
}

// String returns the symbolic name of the code, or its hex value when unknown.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// IsGood reports whether the severity bits are 00.
func (c Code) IsGood() bool { return c&0xC0000000 == 0 }

// IsUncertain reports whether the severity bits are 01.
func (c Code) IsUncertain() bool { return c&0xC0000000 == 0x40000000 }

// IsBad reports whether the severity bits are 10.
func (c Code) IsBad() bool { return c&0x80000000 != 0 }

// Error is an error carrying a status code. It lets the session boundary
// report a precise code for failures that did not originate from a sentinel.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// FromError maps an error to a code. A nil error is Good, an *Error anywhere
// in the chain yields its code, and context expiry is BadTimeout. Anything
// else is BadUnexpectedError.
func FromError(err error) Code {
	if err == nil {
		return Good
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return BadTimeout
	}
	return BadUnexpectedError
}
