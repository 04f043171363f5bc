// Package engine implements the Context: the owner of the graph lock,
// the render lock, the deferred connection queue, the update thread, the
// automatic-pull-node set, and the dispatcher — the singleton lifecycle
// (init -> lazyInitialize -> running -> uninitialize) described by
// spec.md's Context type, generalized to an ordinary constructed value
// since Go has no class-static singleton idiom to imitate; a process
// that wants exactly one still just constructs exactly one.
package engine

import (
	"sync"
	"time"

	"github.com/torvik/auragraph"
	"github.com/torvik/auragraph/alog"
	"github.com/torvik/auragraph/graph"
)

// Finisher is implemented by scheduled-source-backed nodes (builtin's
// AudioPlayer) so the context can poll whether they've finished and
// auto-disconnect them, matching spec.md's "automatic sources list"
// member.
type Finisher interface {
	Finished() bool
}

// startTimeProvider is implemented by source.ScheduledBehavior; checked
// via the owning node's Behavior() during the connect-horizon test. Only
// a Behavior that itself has a PendingOrStartTime method passes the check:
// builtin.AudioPlayer's behavior holds its ScheduledBehavior in a named
// field and does not, so its connects are wired without horizon deferral.
type startTimeProvider interface {
	PendingOrStartTime() (float64, bool)
}

// Context owns one audio graph: its destination node, the two locks, the
// deferred connection queue, the update thread, and the dispatcher.
type Context struct {
	cfg Config
	log alog.Logger

	graphMu  sync.Mutex
	renderMu sync.Mutex

	updateMu sync.Mutex
	pending  []pendingNodeEdge
	params   []pendingParamEdge
	wake     chan struct{}

	edges             []edge
	automaticPull     map[graph.ID]*graph.Node
	automaticSources  map[graph.ID]autoSource
	graphKeepAlive    int

	destination *graph.Node
	destBus     *auragraph.Bus

	dispatcher *Dispatcher

	frame  int64
	latest auragraph.LatestQuantum

	running bool
	done    chan struct{}
}

type autoSource struct {
	node     *graph.Node
	finisher Finisher
}

// New constructs a Context around destination (a node with zero outputs
// representing the speaker sink) and starts its update thread. destBus
// is the context's reusable in-place destination bus, sized per cfg.
func New(destination *graph.Node, opts ...Option) *Context {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := alog.Named("engine")
	c := &Context{
		cfg:              cfg,
		log:              log,
		wake:             make(chan struct{}, 1),
		automaticPull:    make(map[graph.ID]*graph.Node),
		automaticSources: make(map[graph.ID]autoSource),
		destination:      destination,
		destBus:          auragraph.NewBus(cfg.OutputChannels, cfg.FrameCount, cfg.SampleRate),
		dispatcher:       NewDispatcher(256, log),
		running:          true,
		done:             make(chan struct{}),
	}
	go c.runUpdateLoop()
	return c
}

// Dispatcher exposes the context's callback dispatcher, so node
// constructors (builtin.AudioPlayer) can hand it to a
// source.ScheduledBehavior as its onEnded delivery mechanism.
func (c *Context) Dispatcher() *Dispatcher { return c.dispatcher }

// SampleRate, FrameCount, OutputChannels are immutable for the Context's
// lifetime.
func (c *Context) SampleRate() int     { return c.cfg.SampleRate }
func (c *Context) FrameCount() int     { return c.cfg.FrameCount }
func (c *Context) OutputChannels() int { return c.cfg.OutputChannels }

// CurrentFrame, CurrentTime are lock-free reads of the last published
// RenderQuantum, per spec.md 4.6's atomic "last sampling" cell.
func (c *Context) CurrentFrame() int64   { return c.latest.Load().Frame }
func (c *Context) CurrentTime() float64  { return c.latest.Load().Time }

// AddAutomaticPullNode registers n to be pulled every quantum even if no
// downstream consumer is connected to it (AudioRecorderNode,
// MeteringNode: sink nodes with no output of their own).
func (c *Context) AddAutomaticPullNode(n *graph.Node) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	c.automaticPull[n.ID()] = n
}

// RemoveAutomaticPullNode reverses AddAutomaticPullNode.
func (c *Context) RemoveAutomaticPullNode(n *graph.Node) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	delete(c.automaticPull, n.ID())
}

// AddAutomaticSource registers a scheduled-source node for
// auto-disconnect once f reports Finished(), so a one-shot AudioPlayer
// doesn't need its client to remember to disconnect it.
func (c *Context) AddAutomaticSource(n *graph.Node, f Finisher) {
	c.graphMu.Lock()
	defer c.graphMu.Unlock()
	c.automaticSources[n.ID()] = autoSource{node: n, finisher: f}
}

func (c *Context) signalUpdate() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Shutdown sets updateThreadShouldRun = false and waits for the update
// thread to exit, which happens once graphKeepAlive has decayed to 0 so
// any in-flight disconnect fade finishes cleanly. It also closes the
// dispatcher; callers must stop rendering (no more Enqueue-driving calls)
// before calling Shutdown.
func (c *Context) Shutdown() {
	c.graphMu.Lock()
	c.running = false
	c.graphMu.Unlock()
	c.signalUpdate()
	<-c.done
	c.dispatcher.Close()
}

func (c *Context) updateWaitBound() time.Duration {
	seconds := float64(c.cfg.UpdateWaitQuanta*c.cfg.FrameCount) / float64(c.cfg.SampleRate)
	return time.Duration(seconds * float64(time.Second))
}
