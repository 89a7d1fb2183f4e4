package kernel

// Context is a task's handle on the kernel. Tasks only see endpoints through
// capabilities; rights are checked on every call.
type Context struct {
	k      *Kernel
	taskID TaskID
}

// RecvChan returns the inbound queue of a receive capability. The channel is
// closed when the endpoint or the kernel is closed.
func (c *Context) RecvChan(epCap Capability) (<-chan Message, bool) {
	if !epCap.valid() || !epCap.canRecv() {
		return nil, false
	}
	ch, err := c.k.recvChan(epCap.ep)
	if err != nil || ch == nil {
		return nil, false
	}
	return ch, true
}

// Recv blocks for one message.
func (c *Context) Recv(epCap Capability) (Message, bool) {
	ch, ok := c.RecvChan(epCap)
	if !ok {
		return Message{}, false
	}
	msg, ok := <-ch
	return msg, ok
}

// TryRecv returns a queued message if there is one.
func (c *Context) TryRecv(epCap Capability) (Message, bool) {
	ch, ok := c.RecvChan(epCap)
	if !ok {
		return Message{}, false
	}
	select {
	case msg, ok := <-ch:
		return msg, ok
	default:
		return Message{}, false
	}
}

// BlockOnTick blocks until the next Kernel.TickTo.
func (c *Context) BlockOnTick() {
	if c.k == nil {
		return
	}
	_ = c.k.waitTick(c.k.nowTick())
}

// WaitTick blocks until the tick passes after and returns the new tick.
func (c *Context) WaitTick(after uint64) uint64 {
	if c.k == nil {
		return 0
	}
	return c.k.waitTick(after)
}

// SendToCapResult queues a message on toCap, optionally transferring xfer.
// The message From field is 0; a service replies on the capability passed
// as xfer.
func (c *Context) SendToCapResult(toCap Capability, kind uint16, payload []byte, xfer Capability) SendResult {
	switch {
	case !toCap.valid():
		return SendErrInvalidToCap
	case !toCap.canSend():
		return SendErrToNoSendRight
	}
	return c.k.send(0, toCap.ep, kind, payload, xfer)
}

// SendToCapRetry is SendToCapResult that waits one tick and tries again while
// the destination queue is full, at most limit times.
func (c *Context) SendToCapRetry(toCap Capability, kind uint16, payload []byte, xfer Capability, limit int) SendResult {
	res := c.SendToCapResult(toCap, kind, payload, xfer)
	for i := 0; res == SendErrQueueFull && i < limit; i++ {
		c.BlockOnTick()
		res = c.SendToCapResult(toCap, kind, payload, xfer)
	}
	return res
}

// AddTask starts another task on the same kernel.
func (c *Context) AddTask(t Task) TaskID {
	if c.k == nil {
		return 0
	}
	return c.k.AddTask(t)
}

// NewEndpoint allocates an endpoint, typically a private reply queue.
func (c *Context) NewEndpoint(rights Rights) Capability {
	if c.k == nil {
		return Capability{}
	}
	return c.k.NewEndpoint(rights)
}

// CloseEndpoint closes an endpoint the task owns.
func (c *Context) CloseEndpoint(epCap Capability) {
	if c.k == nil {
		return
	}
	c.k.CloseEndpoint(epCap)
}
