// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"sort"
	"time"

	"github.com/pm4rs/xesflow/xstream"
)

// streamNamespace and artifactNamespace key channel endpoints by pipe
// generation (an int assigned in declaration order, starting at 1; 0 is
// reserved for the graph itself and math.MaxInt for graph-side outputs).
type streamNamespace = xstream.ChannelNameSpace[xstream.Result, int]
type artifactNamespace = xstream.ChannelNameSpace[xstream.AnyArtifact, int]

func newStreamNamespace() *streamNamespace     { return xstream.NewChannelNameSpace[xstream.Result, int](0) }
func newArtifactNamespace() *artifactNamespace { return xstream.NewChannelNameSpace[xstream.AnyArtifact, int](0) }

// timeit runs fn and returns its result alongside the wall-clock duration
// it took, for the debug-level timing logged around pipe execution.
func timeit[T any](fn func() T) (T, time.Duration) {
	start := time.Now()
	out := fn()
	return out, time.Since(start)
}

// toposort computes a topological order over deps (sender before receiver
// on every edge) using Kahn's algorithm, breaking ties deterministically by
// generation number. It fails with a FlowError if deps contains a cycle.
func toposort(deps []xstream.Dependency[int]) ([]int, error) {
	nodes := map[int]struct{}{}
	adj := map[int][]int{}
	indegree := map[int]int{}

	for _, d := range deps {
		nodes[d.Sender] = struct{}{}
		nodes[d.Receiver] = struct{}{}
		adj[d.Sender] = append(adj[d.Sender], d.Receiver)
		indegree[d.Receiver]++
	}
	for n := range nodes {
		if _, ok := indegree[n]; !ok {
			indegree[n] = 0
		}
	}

	var queue []int
	for n, deg := range indegree {
		if deg == 0 {
			queue = append(queue, n)
		}
	}
	sort.Ints(queue)

	var order []int
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)

		var freed []int
		for _, m := range adj[n] {
			indegree[m]--
			if indegree[m] == 0 {
				freed = append(freed, m)
			}
		}
		sort.Ints(freed)
		queue = append(queue, freed...)
		sort.Ints(queue)
	}

	if len(order) != len(nodes) {
		return nil, xstream.FlowErrorf("dependency cycle detected among pipe generations")
	}
	return order, nil
}
