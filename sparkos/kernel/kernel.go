package kernel

import (
	"fmt"
	"sync"
)

const (
	maxTasks     = 32
	maxEndpoints = 32
	mailboxSlots = 8
)

type TaskID uint8

// Rights define which operations are allowed for a capability.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Capability grants access to an IPC endpoint.
//
// It is opaque by construction (no exported fields) and may be transferred via IPC.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool {
	return c.rights != 0
}

func (c Capability) Valid() bool { return c.valid() }

func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Restrict returns a capability with a reduced set of rights.
func (c Capability) Restrict(rights Rights) Capability {
	if !c.valid() {
		return Capability{}
	}
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

// Message is a fixed-size IPC envelope.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
	Cap  Capability
}

// Payload returns the valid part of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	return m.Data[:n]
}

// MaxMessageBytes is the maximum payload size for IPC messages.
//
// Larger transfers are chunked by the protocol (open/chunk/commit).
const MaxMessageBytes = 128

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidToCap
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidToCap:
		return "invalid to capability"
	case SendErrToNoSendRight:
		return "to capability has no send right"
	case SendErrNoEndpoint:
		return "no such endpoint"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrQueueFull:
		return "queue full"
	default:
		return "unknown"
	}
}

// Task is a unit of execution. Each task runs on its own goroutine and
// returns when its work is done (usually when its endpoint is closed).
type Task interface {
	Run(*Context)
}

type endpointState struct {
	ch     chan Message
	closed bool
}

// Kernel is a capability-checked IPC router plus a shared tick clock.
type Kernel struct {
	mu sync.Mutex

	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint

	taskCount TaskID
	tasks     sync.WaitGroup

	tick     uint64
	tickCond *sync.Cond
	closed   bool
}

// New creates a kernel instance.
func New() *Kernel {
	k := &Kernel{}
	k.tickCond = sync.NewCond(&k.mu)
	return k
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.endpointCount >= maxEndpoints || k.closed {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	k.endpoints[ep] = endpointState{ch: make(chan Message, mailboxSlots)}
	return Capability{ep: ep, rights: rights}
}

// CloseEndpoint closes the endpoint behind a capability. Receivers drain the
// queued messages and then observe the close; further sends fail with
// SendErrNoEndpoint.
func (k *Kernel) CloseEndpoint(c Capability) {
	if !c.valid() {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closeLocked(c.ep)
}

func (k *Kernel) closeLocked(ep Endpoint) {
	if ep >= k.endpointCount {
		return
	}
	st := &k.endpoints[ep]
	if st.closed || st.ch == nil {
		return
	}
	st.closed = true
	close(st.ch)
}

// AddTask starts a task and returns its ID. Panics inside the task are
// recovered and routed to the panic handler.
func (k *Kernel) AddTask(t Task) TaskID {
	k.mu.Lock()
	if k.taskCount >= maxTasks || k.closed {
		k.mu.Unlock()
		return 0
	}
	id := k.taskCount
	k.taskCount++
	k.tasks.Add(1)
	k.mu.Unlock()

	go k.runTask(id, t)
	return id
}

func (k *Kernel) runTask(id TaskID, t Task) {
	defer k.tasks.Done()
	defer func() {
		if r := recover(); r != nil {
			triggerPanic(PanicInfo{TaskID: id, Tick: k.nowTick(), Value: r})
		}
	}()
	t.Run(&Context{k: k, taskID: id})
}

// TickTo advances the kernel clock to seq and wakes tick waiters.
// Older or equal sequence numbers are ignored.
func (k *Kernel) TickTo(seq uint64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if seq <= k.tick {
		return
	}
	k.tick = seq
	k.tickCond.Broadcast()
}

// Close closes every endpoint and releases tick waiters so tasks can return.
func (k *Kernel) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return
	}
	k.closed = true
	for ep := Endpoint(0); ep < k.endpointCount; ep++ {
		k.closeLocked(ep)
	}
	k.tickCond.Broadcast()
}

// Wait blocks until every task has returned.
func (k *Kernel) Wait() {
	k.tasks.Wait()
}

func (k *Kernel) nowTick() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tick
}

func (k *Kernel) waitTick(after uint64) uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	for k.tick <= after && !k.closed {
		k.tickCond.Wait()
	}
	return k.tick
}

func (k *Kernel) send(from Endpoint, to Endpoint, kind uint16, payload []byte, xfer Capability) SendResult {
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)
	msg.Cap = xfer

	k.mu.Lock()
	defer k.mu.Unlock()
	if to >= k.endpointCount {
		return SendErrNoEndpoint
	}
	ep := &k.endpoints[to]
	if ep.closed || ep.ch == nil {
		return SendErrNoEndpoint
	}
	select {
	case ep.ch <- msg:
		return SendOK
	default:
		return SendErrQueueFull
	}
}

func (k *Kernel) recvChan(ep Endpoint) (chan Message, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ep >= k.endpointCount {
		return nil, fmt.Errorf("kernel: endpoint %d: %s", ep, SendErrNoEndpoint)
	}
	return k.endpoints[ep].ch, nil
}

// TaskFunc adapts a function to the Task interface.
type TaskFunc func(*Context)

func (f TaskFunc) Run(ctx *Context) { f(ctx) }
