package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/kbukum/railskit/logger"
)

// ErrNotRegistered is returned by Resolve for an unknown key.
var ErrNotRegistered = errors.New("di: component not registered")

// ErrInvalidConstructor is returned for a constructor of an unsupported shape.
var ErrInvalidConstructor = errors.New("di: invalid constructor")

// RegistrationMode determines how a component should be resolved
type RegistrationMode int

const (
	Eager     RegistrationMode = iota // Initialize immediately on registration
	Lazy                              // Initialize on first resolve
	Singleton                         // Pre-created instance
)

func (m RegistrationMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Container defines the interface for a dependency injection container.
//
// Constructors take no arguments, a context.Context, or a Container, and
// return either (instance) or (instance, error).
type Container interface {
	Register(key string, constructor interface{}) error
	RegisterEager(key string, constructor interface{}) error
	RegisterSingleton(key string, instance interface{}) error
	Resolve(key string) (interface{}, error)
	Invoke(constructor interface{}) (interface{}, error)
	Keys() []string
	Registrations() []RegistrationInfo
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Initialized bool
}

// UnifiedContainer is the default Container.
type UnifiedContainer struct {
	components map[string]*componentRegistration
	mutex      sync.RWMutex
}

type componentRegistration struct {
	key         string
	constructor interface{}
	mode        RegistrationMode
	instance    interface{}
	initialized bool
	mutex       sync.Mutex
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &UnifiedContainer{
		components: make(map[string]*componentRegistration),
	}
}

// Register registers a constructor that runs on first Resolve. The result
// is cached; a failed construction is retried on the next Resolve.
func (c *UnifiedContainer) Register(key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("register %q: %w", key, err)
	}
	c.put(&componentRegistration{key: key, constructor: constructor, mode: Lazy})
	return nil
}

// RegisterEager registers a component and constructs it immediately.
func (c *UnifiedContainer) RegisterEager(key string, constructor interface{}) error {
	instance, err := c.callConstructor(constructor)
	if err != nil {
		return fmt.Errorf("failed to initialize eager component '%s': %w", key, err)
	}
	c.put(&componentRegistration{
		key:         key,
		constructor: constructor,
		mode:        Eager,
		instance:    instance,
		initialized: true,
	})
	return nil
}

// RegisterSingleton registers a pre-created instance.
func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}) error {
	c.put(&componentRegistration{key: key, mode: Singleton, instance: instance, initialized: true})
	return nil
}

func (c *UnifiedContainer) put(reg *componentRegistration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.components[reg.key] = reg
}

// Resolve gets a component instance.
func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	c.mutex.RLock()
	registration, exists := c.components[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}

	registration.mutex.Lock()
	defer registration.mutex.Unlock()

	if registration.initialized {
		return registration.instance, nil
	}

	instance, err := c.callConstructor(registration.constructor)
	if err != nil {
		logger.Debug("lazy component initialization failed", logger.Fields(
			"component", key,
			"error", err.Error(),
		))
		return nil, fmt.Errorf("failed to initialize lazy component '%s': %w", key, err)
	}
	registration.instance = instance
	registration.initialized = true
	return instance, nil
}

// Invoke calls constructor once, without registering or caching the result.
func (c *UnifiedContainer) Invoke(constructor interface{}) (interface{}, error) {
	return c.callConstructor(constructor)
}

// Keys returns the registered keys in sorted order.
func (c *UnifiedContainer) Keys() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	keys := make([]string, 0, len(c.components))
	for k := range c.components {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registrations returns info about all registered components, sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	keys := c.Keys()

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]RegistrationInfo, 0, len(keys))
	for _, key := range keys {
		reg := c.components[key]
		reg.mutex.Lock()
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        reg.mode,
			Initialized: reg.initialized,
		})
		reg.mutex.Unlock()
	}
	return result
}

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

func checkConstructor(constructor interface{}) error {
	if constructor == nil {
		return fmt.Errorf("%w: nil", ErrInvalidConstructor)
	}
	fnType := reflect.TypeOf(constructor)
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("%w: %T is not a function", ErrInvalidConstructor, constructor)
	}
	switch fnType.NumIn() {
	case 0:
	case 1:
		in := fnType.In(0)
		if in != contextType && in != containerType {
			return fmt.Errorf("%w: unsupported argument %s", ErrInvalidConstructor, in)
		}
	default:
		return fmt.Errorf("%w: too many arguments", ErrInvalidConstructor)
	}
	switch fnType.NumOut() {
	case 1:
	case 2:
		if !fnType.Out(1).Implements(errorType) {
			return fmt.Errorf("%w: second result must be error", ErrInvalidConstructor)
		}
	default:
		return fmt.Errorf("%w: must return (instance) or (instance, error)", ErrInvalidConstructor)
	}
	return nil
}

func (c *UnifiedContainer) callConstructor(constructor interface{}) (interface{}, error) {
	if err := checkConstructor(constructor); err != nil {
		return nil, err
	}
	fn := reflect.ValueOf(constructor)

	var args []reflect.Value
	if fn.Type().NumIn() == 1 {
		if fn.Type().In(0) == contextType {
			args = []reflect.Value{reflect.ValueOf(context.Background())}
		} else {
			args = []reflect.Value{reflect.ValueOf(Container(c))}
		}
	}
	return handleConstructorResults(fn.Call(args))
}

func handleConstructorResults(results []reflect.Value) (interface{}, error) {
	if len(results) == 2 {
		if err, _ := results[1].Interface().(error); err != nil {
			return nil, err
		}
	}
	return results[0].Interface(), nil
}
