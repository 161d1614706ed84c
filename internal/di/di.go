// Package di provides a small service container with typed tokens for
// wiring bounded contexts together.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry provides read access to registered services.
type ServiceRegistry interface {
	Get(name string) any
}

// Container extends the registry with registration. Modules register
// their services during RegisterServices and resolve them at startup.
type Container interface {
	ServiceRegistry
	Register(name string, svc any)
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

// NewContainer creates an empty service container.
func NewContainer() Container {
	return &container{
		instances: make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

type container struct {
	mu        sync.Mutex
	instances map[string]any
	factories map[string]func(ServiceRegistry) any
}

// Register stores an already constructed service under the given name.
func (c *container) Register(name string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.instances[name] = svc
}

// RegisterFactory stores a lazy constructor for the given name. The factory
// runs at most once, on first Get.
func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.factories[name] = factory
}

// Get resolves a service by name, running its factory if it has not been
// constructed yet. It panics if the name was never registered so that
// wiring mistakes surface at startup rather than as nil services later.
func (c *container) Get(name string) any {
	c.mu.Lock()

	if svc, ok := c.instances[name]; ok {
		c.mu.Unlock()
		return svc
	}

	factory, ok := c.factories[name]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: service %q not registered", name))
	}

	// Remove the factory before invoking it so a factory that resolves
	// its own dependencies through the registry cannot loop forever.
	delete(c.factories, name)
	c.mu.Unlock()

	svc := factory(c)

	c.mu.Lock()
	c.instances[name] = svc
	c.mu.Unlock()

	return svc
}

// Token identifies a service of type T inside a container.
type Token[T any] struct {
	name string
}

// NewToken creates a typed token. The name must be unique across all
// modules; the convention is "<context>.<Service>" for public services
// and "<context>:<dep>" for private ones.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the token's registry name.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed factory for the token's service.
func RegisterToken[T any](c Container, tok Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(tok.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves the token's service with its static type. It panics
// if the registered service does not match T.
func GetToken[T any](sr ServiceRegistry, tok Token[T]) T {
	svc, ok := sr.Get(tok.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", tok.name, sr.Get(tok.name)))
	}
	return svc
}
