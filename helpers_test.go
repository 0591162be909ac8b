package kvo

type testObserver struct {
	count   int
	value   any
	change  Change
	keyPath string
	context any
	changes []Change
}

func (o *testObserver) ObserveChange(change Change, keyPath string, context any) {
	o.value = change.NewValue
	o.change = change
	o.keyPath = keyPath
	o.context = context
	o.changes = append(o.changes, change)
	o.count++
}

func (o *testObserver) Reset() {
	*o = testObserver{}
}

func (o *testObserver) Count() int {
	return o.count
}

func mustObject(v any, path ...string) *Object {
	for _, p := range path {
		v, _ = v.(*Object).Get(p)
	}
	return v.(*Object)
}

func mustCollection(v any, path ...string) *Collection {
	for _, p := range path {
		v, _ = v.(*Object).Get(p)
	}
	return v.(*Collection)
}
