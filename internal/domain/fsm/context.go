package fsm

// Context is the extended state carried through the life of one machine.
// It binds the subject entity and an optional rejection reason.
type Context[T any] struct {
	entity T
	err    string
	hasErr bool

	onError func(reason string)
}

// NewContext creates a context bound to the entity
func NewContext[T any](entity T) *Context[T] {
	return &Context[T]{entity: entity}
}

// Entity returns the subject entity
func (c *Context[T]) Entity() T {
	return c.entity
}

// SetError records a human readable reason. The last call wins.
func (c *Context[T]) SetError(reason string) {
	c.err = reason
	c.hasErr = true
	if c.onError != nil {
		c.onError(reason)
	}
}

// Error returns the recorded reason and whether one was set
func (c *Context[T]) Error() (string, bool) {
	return c.err, c.hasErr
}

// HasError reports whether a reason was recorded
func (c *Context[T]) HasError() bool {
	return c.hasErr
}
