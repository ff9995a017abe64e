// SPDX-License-Identifier: Apache-2.0

package xstream

// ArtifactKindStatistics tags the AnyArtifact published by Statistics.
const ArtifactKindStatistics = "Statistics"

// Statistics counts traces, events occurring inside traces, and all events
// (in-trace or bare). It never filters anything.
type Statistics struct {
	BaseHandler
	traceEventCounts []int
	bareEvents       int
}

func NewStatistics() *Statistics { return &Statistics{} }

func (s *Statistics) OnTrace(t Trace) (*Trace, error) {
	s.traceEventCounts = append(s.traceEventCounts, len(t.Events))
	return &t, nil
}

func (s *Statistics) OnEvent(e Event, inTrace bool) (*Event, error) {
	if !inTrace {
		s.bareEvents++
	}
	return &e, nil
}

// Counts returns [numTraces, eventsInTraces, totalEvents] where totalEvents
// = eventsInTraces + bareEvents, matching Scenario 1's reporting triple.
func (s *Statistics) Counts() [3]int {
	inTrace := 0
	for _, n := range s.traceEventCounts {
		inTrace += n
	}
	return [3]int{len(s.traceEventCounts), inTrace, inTrace + s.bareEvents}
}

// OnEmitArtifacts publishes a single Statistics artifact at end of stream.
func (s *Statistics) OnEmitArtifacts() []AnyArtifact {
	return []AnyArtifact{NewArtifact(ArtifactKindStatistics, s)}
}

var _ Handler = (*Statistics)(nil)
