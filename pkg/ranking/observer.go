package ranking

import (
	"context"
	"sync"
	"time"
)

// Observer receives ranking progress. Calls for one Rank invocation never
// overlap, but OnSuccess/OnFail arrive in completion order, not candidate order.
type Observer interface {
	OnStart()
	OnSuccess(ProbeResult)
	OnFail(ProbeResult)
	// OnRetry fires before waiting delay ahead of attempt (1-based count of
	// the attempt about to run, starting at 2).
	OnRetry(attempt int, delay time.Duration)
}

// ObserverFuncs adapts optional functions to Observer.
type ObserverFuncs struct {
	Start   func()
	Success func(ProbeResult)
	Fail    func(ProbeResult)
	Retry   func(attempt int, delay time.Duration)
}

func (f ObserverFuncs) OnStart() {
	if f.Start != nil {
		f.Start()
	}
}

func (f ObserverFuncs) OnSuccess(r ProbeResult) {
	if f.Success != nil {
		f.Success(r)
	}
}

func (f ObserverFuncs) OnFail(r ProbeResult) {
	if f.Fail != nil {
		f.Fail(r)
	}
}

func (f ObserverFuncs) OnRetry(attempt int, delay time.Duration) {
	if f.Retry != nil {
		f.Retry(attempt, delay)
	}
}

// serialObserver funnels concurrent probe callbacks through one mutex.
type serialObserver struct {
	mu    sync.Mutex
	inner Observer
}

func newSerialObserver(o Observer) *serialObserver {
	if o == nil {
		o = ObserverFuncs{}
	}
	return &serialObserver{inner: o}
}

func (s *serialObserver) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.OnStart()
}

func (s *serialObserver) report(r ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Available() {
		s.inner.OnSuccess(r)
	} else {
		s.inner.OnFail(r)
	}
}

func (s *serialObserver) retry(attempt int, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.OnRetry(attempt, delay)
}

// EventType names a ranking event.
type EventType string

const (
	EventStart   EventType = "start"
	EventSuccess EventType = "success"
	EventFail    EventType = "fail"
	EventRetry   EventType = "retry"
)

// Event is one item of a ChannelObserver stream.
type Event struct {
	Type    EventType     `json:"type"`
	Result  *ProbeResult  `json:"result,omitempty"`
	Attempt int           `json:"attempt,omitempty"`
	Delay   time.Duration `json:"delay_ns,omitempty"`
}

// ChannelObserver turns ranking callbacks into a stream of Events. Sends
// block until the consumer reads or ctx is done, after which events are
// dropped. The owner closes the stream with Close once Rank has returned.
type ChannelObserver struct {
	events chan Event
	done   <-chan struct{}
}

// NewChannelObserver creates an observer with the given channel buffer.
func NewChannelObserver(ctx context.Context, buffer int) *ChannelObserver {
	return &ChannelObserver{
		events: make(chan Event, buffer),
		done:   ctx.Done(),
	}
}

// Events returns the stream.
func (c *ChannelObserver) Events() <-chan Event {
	return c.events
}

// Close ends the stream. Call it only after Rank has returned.
func (c *ChannelObserver) Close() {
	close(c.events)
}

func (c *ChannelObserver) send(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *ChannelObserver) OnStart() {
	c.send(Event{Type: EventStart})
}

func (c *ChannelObserver) OnSuccess(r ProbeResult) {
	c.send(Event{Type: EventSuccess, Result: &r})
}

func (c *ChannelObserver) OnFail(r ProbeResult) {
	c.send(Event{Type: EventFail, Result: &r})
}

func (c *ChannelObserver) OnRetry(attempt int, delay time.Duration) {
	c.send(Event{Type: EventRetry, Attempt: attempt, Delay: delay})
}
