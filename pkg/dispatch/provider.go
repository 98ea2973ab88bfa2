// Package dispatch hands builds to providers that run them elsewhere,
// in a clean environment.
package dispatch

import (
	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/scbuild/pkg/config"
)

var (
	log hclog.Logger

	initcallbacks []func()

	factories map[string]Factory
)

func init() {
	factories = make(map[string]Factory)
	log = hclog.L()
}

// SetLogger injects a logger into this package to allow setting up a
// logger tree.
func SetLogger(l hclog.Logger) {
	log = l.Named("dispatch")
}

// RegisterInitCallback allows a sub pkg to defer initialization until
// after certain very early init has happened such as loading config
// files and configuring loggers.
func RegisterInitCallback(f func()) {
	initcallbacks = append(initcallbacks, f)
}

// DoCallbacks is used to invoke all callbacks and perform phase one
// setup which will register the handlers to the map of factories.
func DoCallbacks() {
	for _, cb := range initcallbacks {
		cb()
	}
	initcallbacks = nil
}

// RegisterFactory blindly stores the factory at the given name.  All
// the factories are enabled at build time.
func RegisterFactory(name string, f Factory) {
	factories[name] = f
	log.Debug("Registered dispatch provider", "provider", name)
}

// Construct attempts to initialize the requested provider.
func Construct(name string, c *config.Config) (Provider, error) {
	f, ok := factories[name]
	if !ok {
		log.Warn("Tried to initialize with bogus provider name", "name", name)
		return nil, NewErrUnknownProvider(name)
	}
	return f(log, c)
}
