// SPDX-License-Identifier: Apache-2.0

package extension

import (
	"fmt"
	"time"

	"github.com/pm4rs/xesflow/xstream"
)

const (
	TimeName   = "Time"
	TimePrefix = "time"
	TimeURI    = "http://www.xes-standard.org/time.xesext"
)

const offsetLayout = "2006-01-02T15:04:05Z07:00"

// TimeView is the time extension's view of a component: a single instant
// for an Event, or the interval spanned by a Trace's first and last event.
type TimeView struct {
	t1, t2 time.Time
}

func (t TimeView) interval() (time.Time, time.Time) { return t.t1, t.t2 }

func (t TimeView) String() string {
	if t.t1.Equal(t.t2) {
		return fmt.Sprintf("Timestamp(%s)", t.t1.Format(offsetLayout))
	}
	return fmt.Sprintf("Interval(%s, %s)", t.t1.Format(offsetLayout), t.t2.Format(offsetLayout))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// IsEq reports whether t and other denote the exact same interval.
func (t TimeView) IsEq(other TimeView) bool {
	a1, a2 := t.interval()
	b1, b2 := other.interval()
	return a1.Equal(b1) && a2.Equal(b2)
}

// IsEqTol reports whether t and other agree within tolerance at both ends.
func (t TimeView) IsEqTol(other TimeView, tolerance time.Duration) bool {
	a1, a2 := t.interval()
	b1, b2 := other.interval()
	return absDuration(a1.Sub(b1)) <= tolerance && absDuration(a2.Sub(b2)) <= tolerance
}

// IsBefore reports whether t ends before other begins.
func (t TimeView) IsBefore(other TimeView) bool {
	_, a2 := t.interval()
	b1, _ := other.interval()
	return a2.Before(b1)
}

// IsAfter reports whether t begins after other ends.
func (t TimeView) IsAfter(other TimeView) bool {
	a1, _ := t.interval()
	_, b2 := other.interval()
	return b2.Before(a1)
}

// IsIn reports whether t falls entirely within other.
func (t TimeView) IsIn(other TimeView) bool {
	a1, a2 := t.interval()
	b1, b2 := other.interval()
	return !b1.After(a1) && !a2.After(b2)
}

// StartsIn reports whether t's start falls within other.
func (t TimeView) StartsIn(other TimeView) bool {
	a1, _ := t.interval()
	b1, b2 := other.interval()
	return !b1.After(a1) && !a1.After(b2)
}

// EndsIn reports whether t's end falls within other.
func (t TimeView) EndsIn(other TimeView) bool {
	_, a2 := t.interval()
	b1, b2 := other.interval()
	return !b1.After(a2) && !a2.After(b2)
}

func eventTimestamp(attrs xstream.Attributes) (time.Time, error) {
	v, err := attrs.GetOr("time:timestamp")
	if err != nil {
		return time.Time{}, err
	}
	return xstream.AsDate(v)
}

// ViewTime extracts a TimeView from c: a single Timestamp for an Event, or
// the Interval spanned by a Trace's first and last child. A Trace with no
// children, or whose last child precedes its first, is an ExtensionError —
// Meta carries no time semantics at all.
func ViewTime(c xstream.Component) (TimeView, error) {
	switch c.Kind {
	case xstream.KindEvent:
		ts, err := eventTimestamp(c.AttributesOf())
		if err != nil {
			return TimeView{}, err
		}
		return TimeView{t1: ts, t2: ts}, nil

	case xstream.KindTrace:
		children := c.Children()
		switch len(children) {
		case 0:
			return TimeView{}, xstream.ExtensionErrorf("no interval found")
		case 1:
			ts, err := eventTimestamp(children[0])
			if err != nil {
				return TimeView{}, err
			}
			return TimeView{t1: ts, t2: ts}, nil
		default:
			x, err := eventTimestamp(children[0])
			if err != nil {
				return TimeView{}, err
			}
			y, err := eventTimestamp(children[len(children)-1])
			if err != nil {
				return TimeView{}, err
			}
			if x.After(y) {
				return TimeView{}, xstream.ExtensionErrorf("invalid interval (%s, %s)", x.Format(offsetLayout), y.Format(offsetLayout))
			}
			return TimeView{t1: x, t2: y}, nil
		}

	default:
		return TimeView{}, xstream.ExtensionErrorf("time extension does not support %s", c.Kind)
	}
}

// timeValidator checks that a component's children (a Trace's events, in
// practice — every other component kind has none) appear in non-decreasing
// chronological order.
func timeValidator(_ xstream.Meta) xstream.ValidatorFunc {
	return func(c xstream.Component) error {
		children := c.Children()
		for i := 0; i+1 < len(children); i++ {
			a := xstream.EventComponent(xstream.Event{Attributes: children[i]})
			b := xstream.EventComponent(xstream.Event{Attributes: children[i+1]})

			ts1, err := ViewTime(a)
			if err != nil {
				return err
			}
			ts2, err := ViewTime(b)
			if err != nil {
				return err
			}

			if ts2.IsBefore(ts1) {
				return xstream.ValidationErrorf(
					"at least two child components of %q appear not to be in chronological order (%s, %s)",
					c.Kind, ts1, ts2,
				)
			}
		}
		return nil
	}
}
