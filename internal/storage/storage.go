// Package storage is the client's "local storage": small string values
// kept per visitor (namespace) under well-known keys such as the bearer
// token and the cached user.
package storage

import "context"

// Storage is a namespaced key/value store. Missing keys are reported with
// ok=false and a nil error; removing a missing key is not an error.
type Storage interface {
	GetItem(ctx context.Context, namespace, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, namespace, key, value string) error
	RemoveItem(ctx context.Context, namespace, key string) error
	Clear(ctx context.Context, namespace string) error
}

// Local binds a Storage to one namespace.
type Local struct {
	store     Storage
	namespace string
}

func NewLocal(s Storage, namespace string) Local {
	return Local{store: s, namespace: namespace}
}

func (l Local) Namespace() string { return l.namespace }

func (l Local) Get(ctx context.Context, key string) (string, bool, error) {
	return l.store.GetItem(ctx, l.namespace, key)
}

func (l Local) Set(ctx context.Context, key, value string) error {
	return l.store.SetItem(ctx, l.namespace, key, value)
}

func (l Local) Remove(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := l.store.RemoveItem(ctx, l.namespace, k); err != nil {
			return err
		}
	}
	return nil
}

func (l Local) Clear(ctx context.Context) error {
	return l.store.Clear(ctx, l.namespace)
}
