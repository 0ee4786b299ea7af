// Package env implements the persistent binding environment used for
// lexical scoping.
//
// An Env is a handle into a chain of immutable nodes, one binding per node.
// Extending a scope allocates a single new node in front of the chain and
// leaves every existing handle untouched, so entering a function body or a
// local block never disturbs the caller's scope. The value slot of a node
// is the one mutable piece: Update writes through it in place, and because
// nodes are shared between every handle that can reach them, the new value
// is visible to all of those handles at once. That combination is what
// makes closures over mutable bindings work.
package env

import (
	"fmt"

	"islet/internal/symbol"
)

// Env is a handle to a chain of bindings. The zero value is the empty
// environment. Copying an Env copies the handle, not the chain.
type Env[V any] struct {
	head *node[V]
}

// node holds one binding. key and next are fixed at construction; value is
// overwritten in place by Update.
type node[V any] struct {
	key   symbol.Symbol
	value V
	next  *node[V]
}

// NotFoundError reports a lookup or update for a name with no binding
// anywhere in the chain.
type NotFoundError struct {
	Sym symbol.Symbol
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("binding not found: %s", e.Sym.Name())
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// Empty returns the environment with no bindings.
func Empty[V any]() Env[V] {
	return Env[V]{}
}

// Extend returns a new environment whose most recent binding is (key, value)
// and whose predecessors are the receiver's bindings. The receiver is left
// unchanged and remains independently usable.
func (e Env[V]) Extend(key symbol.Symbol, value V) Env[V] {
	return Env[V]{head: &node[V]{key: key, value: value, next: e.head}}
}

// ExtendName is Extend with the key interned from its textual spelling.
func (e Env[V]) ExtendName(name string, value V) Env[V] {
	return e.Extend(symbol.Intern(name), value)
}

// Lookup returns the value of the most recent binding for key. A newer
// binding shadows an older one for the same key; the older binding is still
// present in the chain and still reachable through handles taken before the
// shadowing Extend.
func (e Env[V]) Lookup(key symbol.Symbol) (V, error) {
	for n := e.head; n != nil; n = n.next {
		if n.key == key {
			return n.value, nil
		}
	}
	var zero V
	return zero, &NotFoundError{Sym: key}
}

// Update overwrites the value of the most recent binding for key, in place.
// The write is visible through every handle that shares the node, including
// handles that extended the chain in other directions. The chain's shape
// never changes.
func (e Env[V]) Update(key symbol.Symbol, value V) error {
	for n := e.head; n != nil; n = n.next {
		if n.key == key {
			n.value = value
			return nil
		}
	}
	return &NotFoundError{Sym: key}
}

// Len returns the number of bindings in the chain, counting shadowed ones.
func (e Env[V]) Len() int {
	count := 0
	for n := e.head; n != nil; n = n.next {
		count++
	}
	return count
}
