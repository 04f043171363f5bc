package engine

import "github.com/torvik/auragraph/graph"

// wouldCreateCycle reports whether wiring src.Output(srcIdx) into
// dest.Input(destIdx) (signal flowing src -> dest) would create a cycle.
// That's true iff src is already reachable *from* dest by following
// existing edges forward (committed graph wiring plus any
// not-yet-applied pending connects) — i.e. a path dest ~> src already
// exists, so the new edge src -> dest would close the loop. Detected
// eagerly, at enqueue time, per spec.md 4.1's "DFS from the source
// through existing edges before accepting the enqueue" (here walked
// from the prospective destination, since that's the direction that
// actually answers the question).
func wouldCreateCycle(src, dest *graph.Node, pending []pendingNodeEdge) bool {
	if src == dest {
		return true
	}
	visited := map[graph.ID]bool{dest.ID(): true}
	stack := []*graph.Node{dest}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i := 0; i < n.NumberOfOutputs(); i++ {
			for _, next := range n.Output(i).ConsumerNodes() {
				if next == src {
					return true
				}
				if !visited[next.ID()] {
					visited[next.ID()] = true
					stack = append(stack, next)
				}
			}
		}
		for _, pe := range pending {
			if pe.phase != phaseConnect || pe.src != n {
				continue
			}
			if pe.dest == src {
				return true
			}
			if !visited[pe.dest.ID()] {
				visited[pe.dest.ID()] = true
				stack = append(stack, pe.dest)
			}
		}
	}
	return false
}
