package auragraph

// Channel is a contiguous block of float32 samples plus a silent flag.
// Writing through Set clears the flag; callers that hand-write into Data
// directly (hot path) are responsible for calling MarkNonSilent.
type Channel struct {
	Data   []float32
	silent bool
}

// NewChannel allocates a Channel of the given length, silent by default.
func NewChannel(length int) Channel {
	return Channel{Data: make([]float32, length), silent: true}
}

// IsSilent reports whether the channel is known to contain only zeros.
func (c *Channel) IsSilent() bool {
	return c.silent
}

// Zero fills the channel with zeros and marks it silent. This is the only
// way to clear the silent flag back to true; writing data must go through
// Set/MarkNonSilent.
func (c *Channel) Zero() {
	for i := range c.Data {
		c.Data[i] = 0
	}
	c.silent = true
}

// MarkNonSilent clears the silent flag without touching Data. Call this
// after writing samples directly into Data.
func (c *Channel) MarkNonSilent() {
	c.silent = false
}

// Set assigns a full-length sample slice and clears the silent flag.
func (c *Channel) Set(data []float32) {
	copy(c.Data, data)
	c.silent = false
}

// CopyFrom copies the contents of src into c. If src is silent, c is
// zeroed instead of memcpy'd, per the spec's channel-copy invariant: a
// silent source must produce a silent, all-zero destination rather than
// whatever stale data src.Data happens to hold.
func (c *Channel) CopyFrom(src *Channel) {
	if src.silent {
		c.Zero()
		return
	}
	copy(c.Data, src.Data)
	c.silent = false
}
