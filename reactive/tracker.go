package reactive

// Subscriber is a reactive computation. Cells hold on to the pointer, so the
// same Subscriber re-runs every time one of the cells it last read changes.
type Subscriber struct {
	fn func()
}

// Tracker records which Subscriber is currently evaluating so that cell reads
// can subscribe it. It is not safe for concurrent use; owners serialize access.
type Tracker struct {
	stack []*Subscriber
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Active returns the innermost evaluating subscriber, nil when reads are untracked.
func (tr *Tracker) Active() *Subscriber {
	if len(tr.stack) == 0 {
		return nil
	}
	return tr.stack[len(tr.stack)-1]
}

// Depth is the number of evaluations in progress.
func (tr *Tracker) Depth() int {
	return len(tr.stack)
}

func (tr *Tracker) run(sub *Subscriber) {
	tr.push(sub)
	defer tr.pop()
	sub.fn()
}

func (tr *Tracker) push(sub *Subscriber) {
	tr.stack = append(tr.stack, sub)
}

func (tr *Tracker) pop() {
	lastIdx := len(tr.stack) - 1
	tr.stack[lastIdx] = nil
	tr.stack = tr.stack[:lastIdx]
}

// Track runs fn once as a new Subscriber. Every cell read during fn, and not
// inside a nested Track, re-runs fn when that cell changes.
func Track(tr *Tracker, fn func()) {
	tr.run(&Subscriber{fn: fn})
}

// Untrack runs fn with tracking paused.
func Untrack(tr *Tracker, fn func()) {
	tr.push(nil)
	defer tr.pop()
	fn()
}
