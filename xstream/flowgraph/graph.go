// SPDX-License-Identifier: Apache-2.0

package flowgraph

import (
	"context"
	"math"
	"sort"

	"github.com/pm4rs/xesflow/xstream"
	"github.com/pm4rs/xesflow/xstream/plugin"
)

// Graph is a declarative collection of Pipes plus the named artifacts fed
// into, and collected out of, their execution. Source/Stream/Sink build up
// one staging Pipe at a time; calling Source again, or Sink, closes it and
// appends it to Pipes.
type Graph struct {
	Artifacts map[string]xstream.AnyArtifact
	Pipes     []Pipe

	generation int
	staging    *Pipe
	registry   *plugin.Registry
}

// NewGraph returns an empty graph resolved against reg. A nil reg uses
// plugin.Default().
func NewGraph(reg *plugin.Registry) *Graph {
	if reg == nil {
		reg = plugin.Default()
	}
	return &Graph{Artifacts: map[string]xstream.AnyArtifact{}, registry: reg}
}

// Source starts a new pipe named name, rooted at source. Any pipe already
// staging is closed first.
func (g *Graph) Source(name string, source Segment) *Graph {
	g.close()
	g.staging = NewPipe(name, source)
	return g
}

// Stream appends an intermediate segment to the staging pipe.
func (g *Graph) Stream(s Segment) (*Graph, error) {
	if g.staging == nil {
		return nil, xstream.FlowErrorf("no pipe is staging: call Source first")
	}
	g.staging.Stream(s)
	return g, nil
}

// Sink sets the staging pipe's terminal segment and closes it.
func (g *Graph) Sink(s Segment) (*Graph, error) {
	if g.staging == nil {
		return nil, xstream.FlowErrorf("no pipe is staging: call Source first")
	}
	g.staging.WithSink(s)
	g.close()
	return g, nil
}

func (g *Graph) close() {
	if g.staging != nil {
		g.Pipes = append(g.Pipes, *g.staging)
		g.staging = nil
	}
}

// Execute resolves every pipe's channel endpoints against their declared
// generation, verifies the resulting dependency graph is acyclic, and runs
// every pipe via executor. It follows an 8-step protocol:
//
//  1. close any staging pipe
//  2. assign each pipe a generation in declaration order and acquire its
//     segments' channel endpoints against both namespaces
//  3. drain whichever sender/receiver endpoints remain unacquired at
//     generation 0 (graph input) and math.MaxInt (graph output)
//  4. merge both namespaces' dependency relations and topologically sort
//     them, failing on a cycle
//  5. schedule one job per pipe in reverse topological order
//  6. schedule the jobs with executor
//  7. send every named input artifact the graph holds to its sender
//  8. join the executor and collect named and anonymous artifact results
//     back into Artifacts
func (g *Graph) Execute(ctx context.Context, executor Executor) error {
	g.close()

	scns := newStreamNamespace()
	acns := newArtifactNamespace()

	pipes := make(map[int]preparedPipe, len(g.Pipes))
	for i, pipe := range g.Pipes {
		gen := i + 1
		scns.SetGeneration(gen)
		acns.SetGeneration(gen)
		pp, err := pipe.acquire(scns, acns, g.registry)
		if err != nil {
			return err
		}
		pipes[gen] = pp
	}
	g.Pipes = nil

	acns.SetGeneration(0)
	artifactSenders, err := acns.AcquireRemainingSenders()
	if err != nil {
		return err
	}
	acns.SetGeneration(math.MaxInt)
	artifactReceivers, err := acns.AcquireRemainingReceivers()
	if err != nil {
		return err
	}

	scns.SetGeneration(0)
	if _, err := scns.AcquireRemainingSenders(); err != nil {
		return err
	}
	scns.SetGeneration(math.MaxInt)
	if _, err := scns.AcquireRemainingReceivers(); err != nil {
		return err
	}

	streamDeps, err := scns.Dependencies()
	if err != nil {
		return err
	}
	artifactDeps, err := acns.Dependencies()
	if err != nil {
		return err
	}
	deps := append(streamDeps, artifactDeps...)

	order, err := toposort(deps)
	if err != nil {
		return err
	}
	position := make(map[int]int, len(order))
	for i, gen := range order {
		position[gen] = i
	}

	schedule := make([]int, 0, len(pipes))
	for gen := range pipes {
		schedule = append(schedule, gen)
	}
	sort.Slice(schedule, func(i, j int) bool {
		pi, oki := position[schedule[i]]
		pj, okj := position[schedule[j]]
		if !oki {
			pi = math.MaxInt
		}
		if !okj {
			pj = math.MaxInt
		}
		return pi < pj
	})
	for i, j := 0, len(schedule)-1; i < j; i, j = i+1, j-1 {
		schedule[i], schedule[j] = schedule[j], schedule[i]
	}

	type jobResult struct {
		artifacts []namedArtifact
		err       error
	}
	results := make(chan jobResult, len(schedule))

	jobs := make([]func(), 0, len(schedule))
	for _, gen := range schedule {
		pp := pipes[gen]
		jobs = append(jobs, func() {
			artifacts, err := pp.execute(ctx)
			results <- jobResult{artifacts: artifacts, err: err}
		})
	}

	executor.Schedule(jobs)

	for name, snd := range artifactSenders {
		v, ok := g.Artifacts[name]
		if !ok {
			return xstream.FlowErrorf("no such artifact to send into the graph: %q", name)
		}
		snd.Send(v)
		delete(g.Artifacts, name)
	}

	if err := executor.Join(); err != nil {
		return err
	}
	close(results)

	collected := make(map[string]xstream.AnyArtifact, len(schedule))
	for r := range results {
		if r.err != nil {
			return r.err
		}
		for _, na := range r.artifacts {
			collected[na.Name] = na.Artifact
		}
	}

	for name, rcv := range artifactReceivers {
		v, ok := rcv.Recv()
		if !ok {
			return xstream.FlowErrorf("unable to receive graph output artifact: %q", name)
		}
		collected[name] = v
	}

	for k, v := range collected {
		g.Artifacts[k] = v
	}
	g.generation++
	return nil
}

// Generation reports how many times Execute has completed successfully.
func (g *Graph) Generation() int { return g.generation }
