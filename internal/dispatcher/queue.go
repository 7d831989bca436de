package dispatcher

import (
	"log"

	"github.com/auvious/janus-gateway/internal/protocol"
)

const queueDepth = 256

type job struct {
	req    *protocol.Request
	result chan *protocol.Response
}

// Dispatcher is the single worker that consumes control messages from a
// bounded FIFO (§5: "A single dispatcher worker consumes control messages
// from a bounded FIFO queue"). Handlers run on the worker goroutine, so
// requests for every session are naturally serialized.
type Dispatcher struct {
	ctx   *Context
	queue chan job
	done  chan struct{}
}

// New constructs a Dispatcher bound to ctx. Call Start to launch the
// worker goroutine.
func New(ctx *Context) *Dispatcher {
	return &Dispatcher{
		ctx:   ctx,
		queue: make(chan job, queueDepth),
		done:  make(chan struct{}),
	}
}

// Start launches the worker goroutine. Safe to call once.
func (d *Dispatcher) Start() {
	go d.run()
}

// Stop closes the queue, which is the worker's shutdown signal, and blocks
// until the worker exits.
func (d *Dispatcher) Stop() {
	close(d.queue)
	<-d.done
}

// Submit enqueues req and blocks for its response. The request type
// determines whether the returned Response represents a synchronous ack or
// the terminal event of an otherwise asynchronous operation (§4.4).
func (d *Dispatcher) Submit(req *protocol.Request) *protocol.Response {
	j := job{req: req, result: make(chan *protocol.Response, 1)}

	d.queue <- j
	return <-j.result
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for j := range d.queue {
		resp := d.handle(j.req)
		j.result <- resp
	}

	log.Println("Dispatcher.run: queue closed, exiting")
}
