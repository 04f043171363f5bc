package builtin

import (
	"github.com/torvik/auragraph/engine"
	"github.com/torvik/auragraph/plugin"
)

// NewPluginNode loads the VST2 plugin at path, sized for ctx's frame
// count, sample rate and output channel count, per SPEC_FULL.md §4.7.
// Must only be called from the graph thread (it never runs from the
// render path).
func NewPluginNode(ctx *engine.Context, path string) (*plugin.Node, error) {
	return plugin.Load(path, ctx.FrameCount(), ctx.SampleRate(), ctx.OutputChannels())
}
