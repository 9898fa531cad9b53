// Package listeners holds the built-in listener definitions. Files register
// from init(); main feeds All() into the engine at startup.
package listeners

import "github.com/codekaffe/sensum/internal/listener"

var defs []listener.Listener

func register(def listener.Listener) {
	defs = append(defs, def)
}

// All returns the built-in definitions in declaration order.
func All() []listener.Listener {
	return defs
}
