// Package symbol provides interned identifiers for the interpreter.
//
// Interning maps each distinct spelling to a single canonical Symbol, so
// that identifier equality is an integer comparison rather than a string
// comparison. The same text always yields the same Symbol for the life of
// the process.
package symbol

// Symbol is a canonical, cheaply comparable identifier. The zero value is
// not a valid symbol; obtain symbols through Intern.
type Symbol struct {
	id int
}

type table struct {
	ids   map[string]int
	names []string
}

var global = &table{ids: make(map[string]int)}

// Intern returns the canonical Symbol for name, creating it on first use.
func Intern(name string) Symbol {
	if id, ok := global.ids[name]; ok {
		return Symbol{id: id}
	}
	id := len(global.names) + 1 // id 0 is reserved for the zero Symbol
	global.names = append(global.names, name)
	global.ids[name] = id
	return Symbol{id: id}
}

// Name returns the spelling the symbol was interned from.
func (s Symbol) Name() string {
	if s.id == 0 {
		return ""
	}
	return global.names[s.id-1]
}

func (s Symbol) String() string { return s.Name() }
