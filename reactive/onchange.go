package reactive

// OnChange evaluates source under tracking and calls listener with the new and
// previous results each time a cell read by source changes. The first
// evaluation only records the previous value.
func OnChange[T any](tr *Tracker, source func() T, listener func(current, previous T)) {
	var (
		prev   T
		isInit bool
	)
	Track(tr, func() {
		v := source()
		if isInit {
			listener(v, prev)
		} else {
			isInit = true
		}
		prev = v
	})
}
