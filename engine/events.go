// =======================
// engine/events.go
// =======================

package engine

import (
	"context"
	"image"
	"io"
	"sync"
)

// EventKind identifies a notification sent by the engine.
type EventKind int

const (
	EventUpdateHashImage EventKind = iota
	EventUpdateBucketImage
	EventIncrementHashCount
	EventNumberOfInputsChanged
	EventTasksDidEnd
	EventTasksDidCancel
)

func (k EventKind) String() string {
	switch k {
	case EventUpdateHashImage:
		return "update_hash_image"
	case EventUpdateBucketImage:
		return "update_bucket_image"
	case EventIncrementHashCount:
		return "increment_hash_count"
	case EventNumberOfInputsChanged:
		return "number_of_inputs_changed"
	case EventTasksDidEnd:
		return "tasks_did_end"
	case EventTasksDidCancel:
		return "tasks_did_cancel"
	default:
		return "unknown"
	}
}

// Event is one notification from the engine.
type Event struct {
	Kind EventKind

	// Count is the total number of inputs for EventNumberOfInputsChanged
	// and the number of increments folded into one EventIncrementHashCount.
	Count uint64

	// Image is set on the image update events.
	Image *image.RGBA

	// Summary is set on EventTasksDidEnd.
	Summary string

	// Err is set on EventTasksDidEnd when the run failed.
	Err error
}

// Terminal reports whether e ends a run.
func (e Event) Terminal() bool {
	return e.Kind == EventTasksDidEnd || e.Kind == EventTasksDidCancel
}

func (e Event) progress() bool {
	return e.Kind == EventIncrementHashCount || e.Kind == EventNumberOfInputsChanged
}

// Delegate receives engine notifications as method calls.
type Delegate interface {
	UpdateHashImageData(img *image.RGBA)
	UpdateBucketImageData(img *image.RGBA)
	IncrementHashCount()
	TasksDidEnd(summary string)
	TasksDidCancel()
	NumberOfInputsChanged(n uint64)
}

// Dispatch reads events and calls the matching Delegate methods until a run
// ends, then returns the terminal event. It returns io.EOF if events is
// closed first and the context error if ctx is done first.
func Dispatch(ctx context.Context, events <-chan Event, d Delegate) (Event, error) {
	for {
		select {
		case <-ctx.Done():
			return Event{}, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return Event{}, io.EOF
			}

			switch ev.Kind {
			case EventUpdateHashImage:
				d.UpdateHashImageData(ev.Image)
			case EventUpdateBucketImage:
				d.UpdateBucketImageData(ev.Image)
			case EventIncrementHashCount:
				for i := uint64(0); i < ev.Count; i++ {
					d.IncrementHashCount()
				}
			case EventNumberOfInputsChanged:
				d.NumberOfInputsChanged(ev.Count)
			case EventTasksDidEnd:
				d.TasksDidEnd(ev.Summary)
			case EventTasksDidCancel:
				d.TasksDidCancel()
			}

			if ev.Terminal() {
				return ev, nil
			}
		}
	}
}

// dispatcher hands events to a single consumer without ever blocking the
// sender. Events wait in an unbounded queue; progress events still waiting
// are folded together so a slow consumer sees fewer, larger updates.
type dispatcher struct {
	mu         sync.Mutex
	queue      []Event
	lastInputs uint64

	signal chan struct{}
	out    chan Event
	quit   chan struct{}
	once   sync.Once
}

func newDispatcher(buffer int) *dispatcher {
	d := &dispatcher{
		signal: make(chan struct{}, 1),
		out:    make(chan Event, buffer),
		quit:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher) push(ev Event) {
	d.mu.Lock()
	if !d.fold(ev) {
		d.queue = append(d.queue, ev)
	}
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// fold merges ev into a progress event already waiting at the tail of the
// queue. It must be called with mu held.
func (d *dispatcher) fold(ev Event) bool {
	if ev.Kind == EventNumberOfInputsChanged {
		// Counts are reported monotonically; a stale count from a slower
		// worker is already covered by a larger one.
		if ev.Count <= d.lastInputs {
			return true
		}
		d.lastInputs = ev.Count
	}

	if !ev.progress() {
		return false
	}

	for i := len(d.queue) - 1; i >= 0 && d.queue[i].progress(); i-- {
		tail := &d.queue[i]
		if tail.Kind != ev.Kind {
			continue
		}
		if ev.Kind == EventIncrementHashCount {
			tail.Count += ev.Count
		} else {
			tail.Count = ev.Count
		}
		return true
	}
	return false
}

// reset forgets the inputs reported by a previous run.
func (d *dispatcher) reset() {
	d.mu.Lock()
	d.lastInputs = 0
	d.mu.Unlock()
}

func (d *dispatcher) run() {
	defer close(d.out)

	for {
		d.mu.Lock()
		batch := d.queue
		d.queue = nil
		d.mu.Unlock()

		if len(batch) == 0 {
			select {
			case <-d.signal:
				continue
			case <-d.quit:
				return
			}
		}

		for _, ev := range batch {
			select {
			case d.out <- ev:
			case <-d.quit:
				return
			}
		}
	}
}

func (d *dispatcher) close() {
	d.once.Do(func() { close(d.quit) })
}
