// Package scheduler implements the build execution scheduler.
package scheduler

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"strconv"
	"sync"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// NodeStatus represents the scheduling state of a node.
type NodeStatus string

const (
	// StatusPending indicates the node is waiting for its dependencies.
	StatusPending NodeStatus = "Pending"
	// StatusReady indicates every dependency has succeeded or was cached.
	StatusReady NodeStatus = "Ready"
	// StatusRunning indicates the node is currently executing.
	StatusRunning NodeStatus = "Running"
	// StatusSucceeded indicates the node finished successfully.
	StatusSucceeded NodeStatus = "Succeeded"
	// StatusFailed indicates the node execution failed.
	StatusFailed NodeStatus = "Failed"
	// StatusCached indicates the node was skipped because its fingerprint
	// was already in the result store.
	StatusCached NodeStatus = "Cached"
	// StatusBlocked indicates the node was never attempted because a
	// transitive dependency failed.
	StatusBlocked NodeStatus = "Blocked"
)

// Terminal reports whether the status is a terminal state.
func (s NodeStatus) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCached, StatusBlocked:
		return true
	}
	return false
}

// NodeReport is the per-node outcome of a run.
type NodeReport struct {
	Name        string
	Fingerprint domain.Fingerprint
	Status      NodeStatus
	// Cause is the failure cause for Failed nodes.
	Cause error
	// BlockedBy names the failed node for Blocked nodes.
	BlockedBy string
}

// RunReport summarizes a whole run, one entry per node in topological order.
type RunReport struct {
	Nodes []NodeReport
}

// Status returns the status of a node by name.
func (r *RunReport) Status(name string) NodeStatus {
	for _, n := range r.Nodes {
		if n.Name == name {
			return n.Status
		}
	}
	return ""
}

// Counts returns how many nodes ended in each status.
func (r *RunReport) Counts() map[NodeStatus]int {
	counts := make(map[NodeStatus]int)
	for _, n := range r.Nodes {
		counts[n.Status]++
	}
	return counts
}

// Options configures a scheduler run.
type Options struct {
	// Parallelism is the maximum number of concurrently running nodes.
	// Zero or negative means runtime.NumCPU().
	Parallelism int
	// Force bypasses the result store; every node is executed.
	Force bool
	// HardKill terminates in-flight phases on context cancellation instead
	// of letting running nodes finish.
	HardKill bool
}

// Scheduler dispatches graph nodes to the executor in dependency order,
// consulting the result store before each dispatch.
type Scheduler struct {
	executor ports.Executor
	store    ports.ResultStore
	tracer   ports.Tracer

	mu     sync.RWMutex
	status map[domain.InternedString]NodeStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(executor ports.Executor, store ports.ResultStore, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		executor: executor,
		store:    store,
		tracer:   tracer,
		status:   make(map[domain.InternedString]NodeStatus),
	}
}

func (s *Scheduler) updateStatus(name domain.InternedString, status NodeStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
}

func (s *Scheduler) getStatus(name domain.InternedString) NodeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[name]
}

// Run executes the graph. The graph must already be validated and
// fingerprinted by the planner.
//
// A node is never dispatched before all its dependencies have succeeded or
// were cached. A failed node blocks its transitive dependents but
// independent branches run to completion; the aggregate ErrBuildFailed is
// returned with the full report. A fingerprint collision halts dispatch
// immediately and is returned as the run error once in-flight nodes drain.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, opts Options) (*RunReport, error) {
	state := s.newRunState(ctx, graph, opts)

	names := make([]string, 0, graph.Len())
	for n := range graph.Walk() {
		names = append(names, n.Name().String())
		s.updateStatus(n.Name(), StatusPending)
	}
	s.tracer.EmitPlan(ctx, names)

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}
		if state.halted() {
			// No new dispatches; drain in-flight nodes to completion.
			state.handleResult(<-state.resultsCh)
			continue
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
		}
	}

	return state.finish()
}

type result struct {
	name domain.InternedString
	res  domain.BuildResult
	err  error
}

type runState struct {
	s     *Scheduler
	graph *domain.Graph
	opts  Options

	ctx context.Context
	// execCtx is handed to the executor. Without HardKill it survives
	// cancellation of ctx so running nodes finish gracefully.
	execCtx context.Context

	inDegree  map[domain.InternedString]int
	ready     []domain.InternedString
	active    int
	resultsCh chan result

	results   map[domain.InternedString]domain.BuildResult
	causes    map[domain.InternedString]error
	blockedBy map[domain.InternedString]domain.InternedString
	collision error
}

func (s *Scheduler) newRunState(ctx context.Context, graph *domain.Graph, opts Options) *runState {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.NumCPU()
	}

	execCtx := context.WithoutCancel(ctx)
	if opts.HardKill {
		execCtx = ctx
	}

	inDegree := make(map[domain.InternedString]int, graph.Len())
	var ready []domain.InternedString
	// Walk yields topological order, so the initial ready queue is filled
	// in deterministic order.
	for n := range graph.Walk() {
		inDegree[n.Name()] = len(n.Inputs)
		if len(n.Inputs) == 0 {
			ready = append(ready, n.Name())
		}
	}

	return &runState{
		s:         s,
		graph:     graph,
		opts:      opts,
		ctx:       ctx,
		execCtx:   execCtx,
		inDegree:  inDegree,
		ready:     ready,
		resultsCh: make(chan result, opts.Parallelism),
		results:   make(map[domain.InternedString]domain.BuildResult),
		causes:    make(map[domain.InternedString]error),
		blockedBy: make(map[domain.InternedString]domain.InternedString),
	}
}

func (state *runState) halted() bool {
	return state.collision != nil || state.ctx.Err() != nil
}

func (state *runState) isDone() bool {
	return state.active == 0 && (len(state.ready) == 0 || state.halted())
}

// insertReady keeps the ready queue sorted by topological index so dispatch
// order is deterministic for a given graph when parallelism is 1.
func (state *runState) insertReady(name domain.InternedString) {
	state.s.updateStatus(name, StatusReady)
	idx, _ := slices.BinarySearchFunc(state.ready, name, func(a, b domain.InternedString) int {
		return state.graph.Index(a) - state.graph.Index(b)
	})
	state.ready = slices.Insert(state.ready, idx, name)
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.opts.Parallelism && !state.halted() {
		name := state.ready[0]
		state.ready = state.ready[1:]
		node, _ := state.graph.Node(name)

		if !state.opts.Force {
			if cached, err := state.s.store.Lookup(node.Fingerprint); err == nil {
				// Ready -> Cached, Running skipped entirely.
				state.s.updateStatus(name, StatusCached)
				_, vertex := state.s.tracer.Start(state.ctx, name.String())
				vertex.Cached()
				state.results[name] = cached
				state.markSatisfied(name)
				continue
			}
		}

		state.active++
		state.s.updateStatus(name, StatusRunning)

		inputs := make(map[string]domain.BuildResult, len(node.Inputs))
		for _, edge := range node.Inputs {
			inputs[edge.Name.String()] = state.results[edge.Name]
		}

		go func(node *domain.Node, inputs map[string]domain.BuildResult) {
			_, vertex := state.s.tracer.Start(state.ctx, node.Name().String())

			res, err := state.s.executor.Execute(state.execCtx, node, inputs)
			if err == nil {
				err = state.s.store.Put(node.Fingerprint, res)
			}
			vertex.Complete(err)

			state.resultsCh <- result{name: node.Name(), res: res, err: err}
		}(node, inputs)
	}
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err == nil {
		state.s.updateStatus(res.name, StatusSucceeded)
		state.results[res.name] = res.res
		state.markSatisfied(res.name)
		return
	}

	if errors.Is(res.err, domain.ErrFingerprintCollision) {
		// Non-determinism upstream: surfaced, never papered over.
		state.collision = res.err
	}

	state.s.updateStatus(res.name, StatusFailed)
	state.causes[res.name] = res.err
	state.blockDependents(res.name)
}

// markSatisfied lowers the in-degree of each dependent; dependents reaching
// zero become Ready. Dependents are visited in topological order.
func (state *runState) markSatisfied(name domain.InternedString) {
	for _, dep := range state.graph.Dependents(name) {
		if state.s.getStatus(dep) == StatusBlocked {
			continue
		}
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.insertReady(dep)
		}
	}
}

// blockDependents transitions every transitive dependent of a failed node
// to Blocked, recording the failed node as the cause.
func (state *runState) blockDependents(failed domain.InternedString) {
	queue := []domain.InternedString{failed}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, dep := range state.graph.Dependents(name) {
			if state.s.getStatus(dep).Terminal() {
				continue
			}
			state.s.updateStatus(dep, StatusBlocked)
			state.blockedBy[dep] = failed
			queue = append(queue, dep)
		}
	}
}

func (state *runState) finish() (*RunReport, error) {
	report := &RunReport{Nodes: make([]NodeReport, 0, state.graph.Len())}
	for n := range state.graph.Walk() {
		name := n.Name()
		report.Nodes = append(report.Nodes, NodeReport{
			Name:        name.String(),
			Fingerprint: n.Fingerprint,
			Status:      state.s.getStatus(name),
			Cause:       state.causes[name],
			BlockedBy:   state.blockedBy[name].String(),
		})
	}

	if state.collision != nil {
		return report, state.collision
	}

	var runErr error
	counts := report.Counts()
	if counts[StatusFailed] > 0 || counts[StatusBlocked] > 0 {
		runErr = zerr.With(domain.ErrBuildFailed, "failed", strconv.Itoa(counts[StatusFailed]))
		runErr = zerr.With(runErr, "blocked", strconv.Itoa(counts[StatusBlocked]))
	}
	if err := state.ctx.Err(); err != nil {
		runErr = errors.Join(runErr, err)
	}

	return report, runErr
}
