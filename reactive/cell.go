package reactive

import mapset "github.com/deckarep/golang-set/v2"

// Cell is a mutable value holder whose reads subscribe the active Subscriber.
type Cell[T comparable] struct {
	tr          *Tracker
	value       T
	init        func() T
	initialized bool
	subs        mapset.Set[*Subscriber]
}

// Signal returns a cell holding v.
func Signal[T comparable](tr *Tracker, v T) *Cell[T] {
	return &Cell[T]{
		tr:          tr,
		value:       v,
		initialized: true,
		subs:        mapset.NewThreadUnsafeSet[*Subscriber](),
	}
}

// Lazy returns a cell whose value is produced by init on first access of any kind.
func Lazy[T comparable](tr *Tracker, init func() T) *Cell[T] {
	return &Cell[T]{
		tr:   tr,
		init: init,
		subs: mapset.NewThreadUnsafeSet[*Subscriber](),
	}
}

func (c *Cell[T]) ensureInit() {
	if c.initialized {
		return
	}
	c.initialized = true
	c.value = c.init()
	c.init = nil
}

// Value returns the current value and subscribes the active Subscriber, if any.
func (c *Cell[T]) Value() T {
	c.ensureInit()
	if sub := c.tr.Active(); sub != nil {
		c.subs.Add(sub)
	}
	return c.value
}

// Peek returns the current value without subscribing.
func (c *Cell[T]) Peek() T {
	c.ensureInit()
	return c.value
}

// SetValue stores v. When v differs from the current value every subscriber
// captured so far is detached and re-run; re-runs subscribe afresh.
func (c *Cell[T]) SetValue(v T) {
	c.ensureInit()
	if c.value == v {
		return
	}
	c.value = v

	prev := c.subs
	c.subs = mapset.NewThreadUnsafeSet[*Subscriber]()
	for _, sub := range prev.ToSlice() {
		c.tr.run(sub)
	}
}

// Subscribers reports how many subscribers will re-run on the next change.
func (c *Cell[T]) Subscribers() int {
	return c.subs.Cardinality()
}
