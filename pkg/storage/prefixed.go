package storage

import (
	"context"
	"fmt"
)

// prefixedAdapter namespaces every key as "namespace:key".
type prefixedAdapter struct {
	inner     Adapter
	namespace string
}

// Prefixed wraps an Adapter so all keys live under namespace.
// An empty namespace returns the adapter unchanged.
func Prefixed(a Adapter, namespace string) Adapter {
	if namespace == "" {
		return a
	}
	return &prefixedAdapter{inner: a, namespace: namespace}
}

func (p *prefixedAdapter) key(k []byte) []byte {
	return []byte(fmt.Sprintf("%s:%s", p.namespace, k))
}

func (p *prefixedAdapter) Get(key []byte) ([]byte, bool, error) {
	return p.inner.Get(p.key(key))
}

func (p *prefixedAdapter) Set(key []byte, value []byte) error {
	return p.inner.Set(p.key(key), value)
}

func (p *prefixedAdapter) Remove(key []byte) error {
	return p.inner.Remove(p.key(key))
}

func (p *prefixedAdapter) Contains(key []byte) (bool, error) {
	return p.inner.Contains(p.key(key))
}

// prefixedHost hands out Prefixed adapters from an underlying Host.
type prefixedHost struct {
	host      Host
	namespace string
}

// Namespace returns a Host sharing h's storage but keeping its keys under namespace.
// Closing the returned Host does not close h.
func Namespace(h Host, namespace string) Host {
	return &prefixedHost{host: h, namespace: namespace}
}

func (p *prefixedHost) Atomic(ctx context.Context, fn func(Adapter) error) error {
	return p.host.Atomic(ctx, func(a Adapter) error {
		return fn(Prefixed(a, p.namespace))
	})
}

func (p *prefixedHost) Close() error {
	return nil
}
