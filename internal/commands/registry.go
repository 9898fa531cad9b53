// Package commands holds the built-in command definitions. Each file
// registers its command from init(); importing the package for side effects
// is enough to populate the default registry.
package commands

import "github.com/codekaffe/sensum/internal/command"

var defaultRegistry = command.NewRegistry()

func register(def command.Command) {
	defaultRegistry.MustRegister(def)
}

// Default returns the registry populated by the definition files.
func Default() *command.Registry {
	return defaultRegistry
}
