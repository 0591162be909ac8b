package kvo

import (
	"github.com/golang/glog"
	"golang.org/x/exp/slices"
)

// Object is an observable set of named properties.
type Object struct {
	node
	props      map[string]any
	listeners  *propertyListeners
	computed   map[string]*computedProperty
	dependents map[string][]string // source property -> computed properties
}

type computedProperty struct {
	get func(*Object) any
	set func(*Object, any)
}

// Get returns the value of a property. Computed properties are evaluated on
// every call.
func (o *Object) Get(name string) (any, bool) {
	if cp, ok := o.computed[name]; ok {
		return cp.get(o), true
	}
	v, ok := o.props[name]
	return v, ok
}

func (o *Object) Has(name string) bool {
	_, ok := o.Get(name)
	return ok
}

// Keys returns the names of the stored and computed properties, sorted.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.props)+len(o.computed))
	for k := range o.props {
		keys = append(keys, k)
	}
	for k := range o.computed {
		if _, ok := o.props[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (o *Object) Len() int {
	return len(o.Keys())
}

// Set stores value under name. Observers of name, and of the computed
// properties depending on it, are notified unless value equals the current
// value.
func (o *Object) Set(name string, value any) {
	o.graph.begin()
	defer o.graph.end()
	o.set(name, value)
}

func (o *Object) set(name string, value any) {
	if cp, ok := o.computed[name]; ok {
		if cp.set == nil {
			glog.Warningf("kvo: ignoring set of computed property %q on %s: no setter", name, o.id)
			return
		}
		cp.set(o, value)
		if !o.dependsOnAnything(name) {
			o.notify(name, Change{Kind: ChangeSetting, NewValue: cp.get(o)})
		}
		return
	}
	old, had := o.props[name]
	o.props[name] = value
	if had && o.graph.equal(old, value) || !had && value == nil {
		return
	}
	o.notify(name, Change{Kind: ChangeSetting, OldValue: old, NewValue: value})
}

func (o *Object) notify(name string, c Change) {
	o.graph.mutations++
	o.listeners.Dispatch(name, c)
	o.notifyDependents(name, map[string]bool{name: true})
}

// notifyDependents raises a change for every computed property depending,
// directly or not, on name. Their value is read at notification time and
// only if someone is listening.
func (o *Object) notifyDependents(name string, seen map[string]bool) {
	for _, dep := range o.dependents[name] {
		if seen[dep] {
			continue
		}
		seen[dep] = true
		if o.listeners.Count(dep) > 0 {
			v, _ := o.Get(dep)
			o.graph.mutations++
			o.listeners.Dispatch(dep, Change{Kind: ChangeSetting, NewValue: v})
		}
		o.notifyDependents(dep, seen)
	}
}

// DefineComputed declares a property whose value is produced by get. set may
// be nil, in which case setting the property is ignored. Changes of any of the
// dependsOn properties are reported as changes of the computed property.
func (o *Object) DefineComputed(name string, get func(*Object) any, set func(*Object, any), dependsOn ...string) {
	if o.computed == nil {
		o.computed = make(map[string]*computedProperty)
	}
	o.computed[name] = &computedProperty{get, set}
	o.SetDependentKeys(name, dependsOn...)
}

// SetDependentKeys records that the value of name depends on sources.
func (o *Object) SetDependentKeys(name string, sources ...string) {
	if o.dependents == nil {
		o.dependents = make(map[string][]string)
	}
	for _, src := range sources {
		if src == name || slices.Contains(o.dependents[src], name) {
			continue
		}
		o.dependents[src] = append(o.dependents[src], name)
	}
}

func (o *Object) dependsOnAnything(name string) bool {
	for _, deps := range o.dependents {
		if slices.Contains(deps, name) {
			return true
		}
	}
	return false
}

// ListenerCount returns the number of low-level listeners installed on a
// property by the subscriptions reaching this object.
func (o *Object) ListenerCount(name string) int {
	return o.listeners.Count(name)
}

// AddObserver registers observer so that its method is called whenever the
// value reached through path from this object changes. method must have the
// signature func(kvo.Change, string, any). Registering the same observer,
// method, path and context twice returns the existing subscription.
func (o *Object) AddObserver(observer any, method string, path string, context any) (*Subscription, error) {
	return o.addObserver(o, observer, method, path, context)
}

// RemoveObserver unregisters every registration of observer for path.
func (o *Object) RemoveObserver(observer any, path string) {
	o.removeObserver(observer, path)
}

// Watch is the function form of AddObserver.
func (o *Object) Watch(path string, h *Handler, context any) (*Subscription, error) {
	return o.watch(o, path, h, context)
}

func (o *Object) Unwatch(path string, h *Handler) {
	o.unwatch(path, h)
}

func (o *Object) ValueForKeyPath(path string) (any, error) {
	return ValueForKeyPath(o, path)
}
