// Package inventory keeps every product in a single aggregate map stored under one slot.
// Each operation loads the whole map and, when it mutates, writes the whole map back.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/ledgerstore/pkg/codec"
	"github.com/kpfaulkner/ledgerstore/pkg/storage"
)

// SlotKey is the storage slot holding the aggregate map.
const SlotKey = "PRODUCTS"

var (
	ErrAlreadyExists  = errors.New("product already exists")
	ErrNotInitialized = errors.New("product inventory not initialized")
	ErrNotFound       = errors.New("product not found")
)

// Product is one entry of the aggregate.
type Product struct {
	Name     string
	Quantity int32
	Price    int32
}

// Values returns [quantity, price], or an empty slice for a nil product.
func (p *Product) Values() []int32 {
	if p == nil {
		return []int32{}
	}
	return []int32{p.Quantity, p.Price}
}

// Store is the aggregate map engine.
type Store struct {
	host storage.Host
}

func NewStore(host storage.Host) *Store {
	s := Store{}
	s.host = host
	return &s
}

// load reads the aggregate. initialized reports whether the slot was ever persisted.
func load(a storage.Adapter) (products map[string]codec.Pair, initialized bool, err error) {
	data, found, err := a.Get([]byte(SlotKey))
	if err != nil {
		return nil, false, fmt.Errorf("load products: %w", err)
	}
	if !found {
		return make(map[string]codec.Pair), false, nil
	}
	products, err = codec.DecodeProducts(data)
	if err != nil {
		return nil, true, err
	}
	return products, true, nil
}

func persist(a storage.Adapter, products map[string]codec.Pair) error {
	if err := a.Set([]byte(SlotKey), codec.EncodeProducts(products)); err != nil {
		return fmt.Errorf("persist products: %w", err)
	}
	return nil
}

// AddProduct inserts name. Fails with ErrAlreadyExists if name is already stored.
func (s *Store) AddProduct(ctx context.Context, name string, quantity int32, price int32) error {
	return s.host.Atomic(ctx, func(a storage.Adapter) error {
		products, _, err := load(a)
		if err != nil {
			return err
		}

		if _, ok := products[name]; ok {
			log.WithField("name", name).Debug("add rejected, product exists")
			return fmt.Errorf("%w: %q", ErrAlreadyExists, name)
		}

		products[name] = codec.Pair{Quantity: quantity, Price: price}
		if err := persist(a, products); err != nil {
			return err
		}
		log.WithFields(log.Fields{"name": name, "quantity": quantity, "price": price}).Debug("product added")
		return nil
	})
}

// GetProduct returns the product, or nil if it was never added (or was deleted).
func (s *Store) GetProduct(ctx context.Context, name string) (*Product, error) {
	var product *Product
	err := s.host.Atomic(ctx, func(a storage.Adapter) error {
		products, _, err := load(a)
		if err != nil {
			return err
		}
		if p, ok := products[name]; ok {
			product = &Product{Name: name, Quantity: p.Quantity, Price: p.Price}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct overwrites an existing product.
// ErrNotInitialized if no aggregate was ever persisted, ErrNotFound if name is absent.
func (s *Store) UpdateProduct(ctx context.Context, name string, quantity int32, price int32) error {
	return s.host.Atomic(ctx, func(a storage.Adapter) error {
		products, initialized, err := load(a)
		if err != nil {
			return err
		}
		if !initialized {
			return ErrNotInitialized
		}
		if _, ok := products[name]; !ok {
			log.WithField("name", name).Debug("update rejected, no such product")
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}

		products[name] = codec.Pair{Quantity: quantity, Price: price}
		if err := persist(a, products); err != nil {
			return err
		}
		log.WithFields(log.Fields{"name": name, "quantity": quantity, "price": price}).Debug("product updated")
		return nil
	})
}

// DeleteProduct removes name if present. The aggregate is persisted even when nothing changed.
func (s *Store) DeleteProduct(ctx context.Context, name string) error {
	return s.host.Atomic(ctx, func(a storage.Adapter) error {
		products, _, err := load(a)
		if err != nil {
			return err
		}

		delete(products, name)
		if err := persist(a, products); err != nil {
			return err
		}
		log.WithField("name", name).Debug("product deleted")
		return nil
	})
}

// ListProducts returns every product ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	var list []Product
	err := s.host.Atomic(ctx, func(a storage.Adapter) error {
		products, _, err := load(a)
		if err != nil {
			return err
		}
		list = make([]Product, 0, len(products))
		for name, p := range products {
			list = append(list, Product{Name: name, Quantity: p.Quantity, Price: p.Price})
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}
