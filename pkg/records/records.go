package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/kpfaulkner/ledgerstore/pkg/clock"
	"github.com/kpfaulkner/ledgerstore/pkg/codec"
	"github.com/kpfaulkner/ledgerstore/pkg/identity"
	"github.com/kpfaulkner/ledgerstore/pkg/storage"
)

var (
	// ErrAbsentRecord is returned when update, delete or ownership checks target an id never created.
	ErrAbsentRecord = errors.New("record absent")
	ErrUnauthorized = errors.New("caller is not the record owner")
)

// Record is a stored record with its owner and last modification time.
type Record struct {
	ID           string
	Value        string
	Owner        identity.Address
	LastModified uint64
}

// Store keeps each record in its own slot, keyed by the record id.
type Store struct {
	host  storage.Host
	clock clock.Clock
}

func NewStore(host storage.Host, clk clock.Clock) *Store {
	s := Store{}
	s.host = host
	s.clock = clk
	return &s
}

// NewID mints a fresh record id.
func NewID() string {
	return uuid.New().String()
}

func load(a storage.Adapter, id string) (*codec.Triple, error) {
	data, found, err := a.Get([]byte(id))
	if err != nil {
		return nil, fmt.Errorf("load record %q: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	t, err := codec.DecodeTriple(data)
	if err != nil {
		return nil, fmt.Errorf("load record %q: %w", id, err)
	}
	return &t, nil
}

// loadOwned loads a record that must exist.
func loadOwned(a storage.Adapter, id string) (*codec.Triple, error) {
	t, err := load(a, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrAbsentRecord, id)
	}
	return t, nil
}

func (s *Store) write(a storage.Adapter, id string, value string, owner identity.Address) (uint64, error) {
	ts := s.clock.Now()
	data := codec.EncodeTriple(codec.Triple{Value: value, Owner: owner, LastModified: ts})
	if err := a.Set([]byte(id), data); err != nil {
		return 0, fmt.Errorf("write record %q: %w", id, err)
	}
	return ts, nil
}

// Create stores id unconditionally. Any earlier record under id, owner included, is replaced.
func (s *Store) Create(ctx context.Context, id string, value string, owner identity.Address) error {
	return s.host.Atomic(ctx, func(a storage.Adapter) error {
		ts, err := s.write(a, id, value, owner)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"id": id, "owner": owner, "ts": ts}).Debug("record created")
		return nil
	})
}

// Read returns the record, or nil if id is not stored.
func (s *Store) Read(ctx context.Context, id string) (*Record, error) {
	var rec *Record
	err := s.host.Atomic(ctx, func(a storage.Adapter) error {
		t, err := load(a, id)
		if err != nil {
			return err
		}
		if t != nil {
			rec = &Record{ID: id, Value: t.Value, Owner: t.Owner, LastModified: t.LastModified}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update replaces the value and refreshes the timestamp. Only the owner may update.
func (s *Store) Update(ctx context.Context, id string, value string, caller identity.Address) error {
	return s.host.Atomic(ctx, func(a storage.Adapter) error {
		t, err := loadOwned(a, id)
		if err != nil {
			return err
		}
		if !caller.Equal(t.Owner) {
			log.WithFields(log.Fields{"id": id, "caller": caller}).Warn("update rejected, caller is not owner")
			return fmt.Errorf("update %q: %w", id, ErrUnauthorized)
		}

		ts, err := s.write(a, id, value, t.Owner)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"id": id, "ts": ts}).Debug("record updated")
		return nil
	})
}

// Delete removes the record. Only the owner may delete.
func (s *Store) Delete(ctx context.Context, id string, caller identity.Address) error {
	return s.host.Atomic(ctx, func(a storage.Adapter) error {
		t, err := loadOwned(a, id)
		if err != nil {
			return err
		}
		if !caller.Equal(t.Owner) {
			log.WithFields(log.Fields{"id": id, "caller": caller}).Warn("delete rejected, caller is not owner")
			return fmt.Errorf("delete %q: %w", id, ErrUnauthorized)
		}

		if err := a.Remove([]byte(id)); err != nil {
			return fmt.Errorf("remove record %q: %w", id, err)
		}
		log.WithField("id", id).Debug("record deleted")
		return nil
	})
}

// IsOwner reports whether address owns id.
func (s *Store) IsOwner(ctx context.Context, id string, address identity.Address) (bool, error) {
	var owner bool
	err := s.host.Atomic(ctx, func(a storage.Adapter) error {
		t, err := loadOwned(a, id)
		if err != nil {
			return err
		}
		owner = address.Equal(t.Owner)
		return nil
	})
	if err != nil {
		return false, err
	}
	return owner, nil
}
