package vm

import (
	"sync"

	"github.com/joeycumines/go-scriptthread/scripterr"
)

// Channel is a named, registerable handle living inside exactly one
// Interpreter at a time: IsRegistered, IsShared, ClearHandlers, CutChannel
// (detach from current thread), SpliceChannel (attach to current thread),
// Register/Unregister.
// actor.Transfer moves a Channel between two Interpreters by calling
// CutChannel on the source and SpliceChannel on the destination.
type Channel struct {
	Name string

	mu       sync.Mutex
	owner    *Interpreter
	shared   bool
	handlers []string
}

// NewChannel constructs an unregistered Channel owned by owner.
func NewChannel(name string, owner *Interpreter) *Channel {
	return &Channel{Name: name, owner: owner}
}

// IsRegistered reports whether the channel is currently registered in its
// owner's Interpreter.
func (c *Channel) IsRegistered() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owner == nil {
		return false
	}
	_, ok := c.owner.Channel(c.Name)
	return ok
}

// IsShared reports whether the channel has been marked shared — a shared
// channel cannot be Transferred, and CutChannel rejects it with
// ErrChannelShared.
func (c *Channel) IsShared() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shared
}

// SetShared marks the channel shared or unshared.
func (c *Channel) SetShared(shared bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shared = shared
}

// ClearHandlers drops every registered event handler name, as Transfer's
// source side does before detaching a channel.
func (c *Channel) ClearHandlers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = nil
}

// AddHandler registers an event handler name on the channel.
func (c *Channel) AddHandler(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, name)
}

// CutChannel detaches the channel from its current owner: it is
// unregistered from that Interpreter's channel table and the Channel's
// owner becomes nil. Fails if the channel is shared (ChannelShared) or
// already detached (ChannelNotRegistered).
func (c *Channel) CutChannel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shared {
		return scripterr.ErrChannelShared
	}
	if c.owner == nil {
		return scripterr.ErrChannelNotRegistered
	}
	c.owner.UnregisterChannel(c.Name)
	c.owner = nil
	return nil
}

// SpliceChannel attaches the channel to dest, registering it in dest's
// channel table. Fails with ChannelExists if dest already has a channel
// registered under this name.
func (c *Channel) SpliceChannel(dest *Interpreter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := dest.Channel(c.Name); exists {
		return scripterr.ErrChannelExists
	}
	if err := dest.RegisterChannel(c); err != nil {
		return scripterr.ErrChannelExists
	}
	c.owner = dest
	return nil
}
