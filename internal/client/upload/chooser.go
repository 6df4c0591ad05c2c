package upload

// Chooser delivers file selections to its subscribers. It stands in for
// the file input of a form: the view that owns the workflow subscribes on
// mount and unsubscribes on teardown. Must be used on the loop goroutine.
type Chooser struct {
	next int
	subs map[int]func(paths []string)
}

// NewChooser returns a chooser without subscribers.
func NewChooser() *Chooser {
	return &Chooser{subs: map[int]func([]string){}}
}

// Subscribe registers fn and returns the function that removes it.
func (c *Chooser) Subscribe(fn func(paths []string)) (unsubscribe func()) {
	id := c.next
	c.next++
	c.subs[id] = fn
	return func() { delete(c.subs, id) }
}

// Choose reports a selection. An empty selection is still delivered; it is
// up to the subscriber to treat it as an abort.
func (c *Chooser) Choose(paths ...string) {
	for _, fn := range c.subs {
		fn(paths)
	}
}

// Subscribers returns the number of current subscribers.
func (c *Chooser) Subscribers() int {
	return len(c.subs)
}
