package mail

import (
	"log"
	"sync"
)

// Dispatcher hands messages to a Sender without blocking the caller.
//
// Dispatch has no error return on purpose: delivery outcome is only ever
// visible on the log sink, which keeps the primary operation's success path
// independent of the provider.
type Dispatcher struct {
	sender Sender
	log    *log.Logger
	wg     sync.WaitGroup
}

// NewDispatcher wires a sender to a log sink. A nil logger falls back to the
// process default logger.
func NewDispatcher(sender Sender, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{sender: sender, log: logger}
}

// Dispatch queues one delivery attempt and returns immediately.
func (d *Dispatcher) Dispatch(msg Message) {
	if d == nil || d.sender == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.sender.Send(msg); err != nil {
			d.log.Printf("mail delivery failed: to=%s subject=%q: %v", msg.To, msg.Subject, err)
		}
	}()
}

// Wait blocks until all dispatched deliveries have finished. Used on
// shutdown and in tests; request paths never call it.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
