// SPDX-License-Identifier: Apache-2.0

// Package xstream implements the streaming event-log pipeline substrate:
// the XES (IEEE 1849-2016) data model, the pull-based stream/sink protocol,
// the observer/handler state machine, and the concrete handlers (filter,
// validator, repair, statistics, split/sample, duplicator) built on top of
// it. See the xstream/flowgraph, xstream/plugin, xstream/extension, and
// xstream/xes subpackages for the flow graph, plugin registry, extension
// registry, and XML codec respectively.
package xstream

import (
	"errors"
	"fmt"
)

// Kind is a closed taxonomy of failure categories raised anywhere in the
// pipeline substrate. It deliberately stays a flat enum rather than a tree
// of distinct error types: every caller that wants to branch on failure
// category does so via IsKind, and every caller that just wants a message
// does so via Error() — mirroring the small composable error values in the
// ambient flow package (RecoveredPanic, IndexedError, NamedError) rather
// than growing a type per failure mode.
type Kind int

const (
	KindState Kind = iota
	KindStream
	KindValidation
	KindKey
	KindXML
	KindParseInt
	KindParseFloat
	KindParseBool
	KindParseDateTime
	KindUTF8
	KindXes
	KindChannel
	KindExtension
	KindAttribute
	KindFlow
)

func (k Kind) String() string {
	switch k {
	case KindState:
		return "StateError"
	case KindStream:
		return "StreamError"
	case KindValidation:
		return "ValidationError"
	case KindKey:
		return "KeyError"
	case KindXML:
		return "XmlError"
	case KindParseInt:
		return "ParseIntError"
	case KindParseFloat:
		return "ParseFloatError"
	case KindParseBool:
		return "ParseBooleanError"
	case KindParseDateTime:
		return "ParseDateTimeError"
	case KindUTF8:
		return "FromUtf8Error"
	case KindXes:
		return "XesError"
	case KindChannel:
		return "ChannelError"
	case KindExtension:
		return "ExtensionError"
	case KindAttribute:
		return "AttributeError"
	case KindFlow:
		return "FlowError"
	default:
		return "UnknownError"
	}
}

// Error is the single wrapping error type for every failure kind in Kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func wrapErr(k Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...), Err: err}
}

func StateErrorf(format string, args ...any) error      { return newErr(KindState, format, args...) }
func StreamErrorf(format string, args ...any) error      { return newErr(KindStream, format, args...) }
func ValidationErrorf(format string, args ...any) error  { return newErr(KindValidation, format, args...) }
func KeyErrorf(format string, args ...any) error         { return newErr(KindKey, format, args...) }
func XMLErrorf(format string, args ...any) error         { return newErr(KindXML, format, args...) }
func XesErrorf(format string, args ...any) error         { return newErr(KindXes, format, args...) }
func ChannelErrorf(format string, args ...any) error     { return newErr(KindChannel, format, args...) }
func ExtensionErrorf(format string, args ...any) error   { return newErr(KindExtension, format, args...) }
func AttributeErrorf(format string, args ...any) error   { return newErr(KindAttribute, format, args...) }
func FlowErrorf(format string, args ...any) error        { return newErr(KindFlow, format, args...) }

func WrapParseInt(err error) error      { return wrapErr(KindParseInt, err, "invalid integer") }
func WrapParseFloat(err error) error    { return wrapErr(KindParseFloat, err, "invalid float") }
func WrapParseBool(err error) error     { return wrapErr(KindParseBool, err, "invalid boolean") }
func WrapParseDateTime(err error) error { return wrapErr(KindParseDateTime, err, "invalid RFC-3339 timestamp") }
func WrapUTF8(err error) error          { return wrapErr(KindUTF8, err, "invalid utf-8") }
func WrapXML(err error) error           { return wrapErr(KindXML, err, "xml decode error") }

// IsKind reports whether err (or any error it wraps) is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
