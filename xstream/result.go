// SPDX-License-Identifier: Apache-2.0

package xstream

// Result is the envelope returned by every Stream.Next call: exactly one of
// a Component, the end-of-stream sentinel (EOF), or an error is populated.
//
// A plain (Component, error) tuple cannot represent "no more components"
// without overloading the zero Component, so Result carries an explicit EOF
// flag instead — see DESIGN.md Open Question O1.
type Result struct {
	Component Component
	EOF       bool
	Err       error
}

func ComponentResult(c Component) Result { return Result{Component: c} }
func EOFResult() Result                  { return Result{EOF: true} }
func ErrResult(err error) Result         { return Result{Err: err} }

// IsComponent reports whether r carries a component.
func (r Result) IsComponent() bool { return !r.EOF && r.Err == nil }
