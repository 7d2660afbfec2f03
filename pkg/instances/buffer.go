// Package instances keeps the renderer side copy of every agent instance.
// The simulation writes change sets into a Buffer from its own goroutine,
// the renderer reads the buffer every frame.
package instances

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/simulation"
)

// Instance is the last known render state of one agent.
type Instance struct {
	Transform simulation.Transform
	Color     colorful.Color
}

// RGBA returns the color as float32 channels with the opacity as alpha,
// the layout ebiten color scales expect.
func (i Instance) RGBA() (r, g, b, a float32) {
	return float32(i.Color.R), float32(i.Color.G), float32(i.Color.B), float32(i.Transform.Opacity)
}

// Stats describes the frames applied so far.
type Stats struct {
	Tick        uint64
	State       simulation.State
	Frames      uint64
	LastUpdates int
}

// Buffer is a simulation.RenderBridge holding one instance pool per class.
type Buffer struct {
	mu    sync.RWMutex
	pools [2][]Instance
	stats Stats
}

// NewBuffer creates a buffer sized for the given class populations.
func NewBuffer(classA, classB int) *Buffer {
	b := &Buffer{}
	b.pools[simulation.ClassA] = make([]Instance, 0, classA)
	b.pools[simulation.ClassB] = make([]Instance, 0, classB)
	return b
}

// Apply implements simulation.RenderBridge. A priming frame (tick 0) comes
// from a new simulation instance and replaces the pools entirely.
func (b *Buffer) Apply(frame *simulation.FrameUpdate) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if frame.Tick == 0 {
		b.pools[simulation.ClassA] = b.pools[simulation.ClassA][:0]
		b.pools[simulation.ClassB] = b.pools[simulation.ClassB][:0]
	}
	for _, u := range frame.Updates {
		inst := b.slot(u.Class, u.ID)
		if inst == nil {
			continue
		}
		if u.Transform != nil {
			inst.Transform = *u.Transform
		}
		if u.Color != nil {
			inst.Color = *u.Color
		}
	}

	b.stats.Tick = frame.Tick
	b.stats.State = frame.State
	b.stats.Frames++
	b.stats.LastUpdates = frame.Len()
}

// slot returns the instance for id, growing the pool when needed.
func (b *Buffer) slot(class simulation.Class, id int) *Instance {
	if class != simulation.ClassA && class != simulation.ClassB || id < 0 {
		return nil
	}
	pool := b.pools[class]
	for len(pool) <= id {
		pool = append(pool, Instance{Color: simulation.BaseColor(class)})
	}
	b.pools[class] = pool
	return &pool[id]
}

// Each calls fn for every instance of the class, in id order, under a read lock.
// fn must not call back into the buffer.
func (b *Buffer) Each(class simulation.Class, fn func(id int, inst Instance)) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, inst := range b.pools[class] {
		fn(id, inst)
	}
}

// Get returns the instance of the class with the given id.
func (b *Buffer) Get(class simulation.Class, id int) (Instance, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if id < 0 || id >= len(b.pools[class]) {
		return Instance{}, false
	}
	return b.pools[class][id], true
}

// Len is the number of instances of the class.
func (b *Buffer) Len(class simulation.Class) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pools[class])
}

// Stats returns the bookkeeping of the last applied frame.
func (b *Buffer) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stats
}
