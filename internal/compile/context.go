package compile

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/skarpdev/iflowgen/pkg/api"
)

// Context carries the per-compile mutable state through the call chain:
// the used-ID set, deterministic ID counters, and the diagnostic sink.
// It is local to one compile invocation; the compiler itself keeps no
// state between invocations.
type Context struct {
	ctx      context.Context
	observer api.Observer

	usedIDs  map[string]struct{}
	counters map[string]int
	diags    []api.Diagnostic
}

// NewContext creates a compile context. obs may be nil.
func NewContext(ctx context.Context, obs api.Observer) *Context {
	if obs == nil {
		obs = api.NoopObserver{}
	}
	c := &Context{
		ctx:      ctx,
		observer: obs,
		usedIDs:  make(map[string]struct{}),
		counters: make(map[string]int),
	}
	// The shared start/end events exist in every document.
	c.usedIDs[api.StartEventID] = struct{}{}
	c.usedIDs[api.EndEventID] = struct{}{}
	return c
}

// ClaimID marks id as used. It returns false when the ID was already
// claimed, signalling a collision the caller must repair.
func (c *Context) ClaimID(id string) bool {
	if _, taken := c.usedIDs[id]; taken {
		return false
	}
	c.usedIDs[id] = struct{}{}
	return true
}

// MintID returns a fresh unique ID derived from base, claiming it.
func (c *Context) MintID(base string) string {
	for {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		id := base + "_" + suffix
		if c.ClaimID(id) {
			return id
		}
	}
}

// NextID returns the next deterministic ID for the given prefix
// (SequenceFlow_1, SequenceFlow_2, ...), skipping IDs already in use.
func (c *Context) NextID(prefix string) string {
	for {
		c.counters[prefix]++
		id := prefix + "_" + strconv.Itoa(c.counters[prefix])
		if c.ClaimID(id) {
			return id
		}
	}
}

// Report records a diagnostic and forwards it to the observer.
func (c *Context) Report(d api.Diagnostic) {
	c.diags = append(c.diags, d)
	c.observer.OnRepair(c.ctx, d)
}

// Diagnostics returns every diagnostic recorded so far.
func (c *Context) Diagnostics() []api.Diagnostic {
	return c.diags
}
