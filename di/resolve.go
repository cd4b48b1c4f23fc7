package di

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrTypeMismatch is returned when a component resolves to a value that is
// not of the requested type.
var ErrTypeMismatch = errors.New("di: component type mismatch")

// Resolve resolves key and asserts the instance to T.
//
//	tr, err := di.Resolve[transport.Transport](c, "transport")
func Resolve[T any](c Container, key string) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, err
	}
	v, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %s", ErrTypeMismatch, key, instance, reflect.TypeFor[T]())
	}
	return v, nil
}

// MustResolve is Resolve for constructors that cannot fail, e.g. a
// dependency registered with RegisterSingleton in the same setup path.
func MustResolve[T any](c Container, key string) T {
	v, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return v
}

// TryResolve reports false when key is not registered. Other failures,
// such as a constructor error or a type mismatch, are returned.
func TryResolve[T any](c Container, key string) (T, bool, error) {
	v, err := Resolve[T](c, key)
	if errors.Is(err, ErrNotRegistered) {
		return v, false, nil
	}
	return v, err == nil, err
}
