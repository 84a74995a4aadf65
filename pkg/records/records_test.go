package records

import (
	"context"
	"testing"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpfaulkner/ledgerstore/pkg/clock"
	"github.com/kpfaulkner/ledgerstore/pkg/identity"
	"github.com/kpfaulkner/ledgerstore/pkg/storage"
)

const (
	alice = identity.Address("GALICE")
	bob   = identity.Address("GBOB")
)

func setupTest() (*Store, *storage.MemDB, *clock.Manual) {
	db := storage.NewMemDB()
	clk := clock.NewManual(1000)
	return NewStore(db, clk), db, clk
}

func TestCreateRead(t *testing.T) {
	bdb, err := storage.NewBadgerDBWithOptions(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	defer bdb.Close()

	hosts := map[string]storage.Host{"memory": storage.NewMemDB(), "badger": bdb}
	for name, host := range hosts {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewStore(host, clock.NewManual(42))

			require.NoError(t, s.Create(ctx, "r1", "hello", alice))
			rec, err := s.Read(ctx, "r1")
			require.NoError(t, err)
			require.NotNil(t, rec)
			assert.Equal(t, Record{ID: "r1", Value: "hello", Owner: alice, LastModified: 42}, *rec)
		})
	}
}

func TestReadNeverCreated(t *testing.T) {
	s, _, _ := setupTest()

	rec, err := s.Read(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestUpdateByOwner(t *testing.T) {
	ctx := context.Background()
	s, _, clk := setupTest()

	require.NoError(t, s.Create(ctx, "r1", "v1", alice))
	clk.Advance(10)
	require.NoError(t, s.Update(ctx, "r1", "v2", alice))

	rec, err := s.Read(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "v2", rec.Value)
	assert.Equal(t, alice, rec.Owner, "owner survives updates")
	assert.Equal(t, uint64(1010), rec.LastModified)
}

func TestUpdateByOtherIsRejected(t *testing.T) {
	ctx := context.Background()
	s, db, clk := setupTest()

	require.NoError(t, s.Create(ctx, "r1", "v", alice))
	before := db.Snapshot()
	clk.Advance(5)

	err := s.Update(ctx, "r1", "v2", bob)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, before, db.Snapshot())

	rec, err := s.Read(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "v", rec.Value)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, db, _ := setupTest()

	require.NoError(t, s.Create(ctx, "r1", "v", alice))

	err := s.Delete(ctx, "r1", bob)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, db.Len())

	require.NoError(t, s.Delete(ctx, "r1", alice))
	rec, err := s.Read(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 0, db.Len())
}

func TestAbsentRecord(t *testing.T) {
	ctx := context.Background()
	s, db, _ := setupTest()

	assert.ErrorIs(t, s.Update(ctx, "ghost", "v", alice), ErrAbsentRecord)
	assert.ErrorIs(t, s.Delete(ctx, "ghost", alice), ErrAbsentRecord)
	_, err := s.IsOwner(ctx, "ghost", alice)
	assert.ErrorIs(t, err, ErrAbsentRecord)

	assert.Equal(t, 0, db.Len(), "failed calls leave nothing behind")
}

func TestAbsentAfterDelete(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setupTest()

	require.NoError(t, s.Create(ctx, "r1", "v", alice))
	require.NoError(t, s.Delete(ctx, "r1", alice))
	assert.ErrorIs(t, s.Update(ctx, "r1", "v", alice), ErrAbsentRecord)
}

func TestIsOwner(t *testing.T) {
	ctx := context.Background()
	s, _, _ := setupTest()

	require.NoError(t, s.Create(ctx, "r1", "v", alice))

	ok, err := s.IsOwner(ctx, "r1", alice)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsOwner(ctx, "r1", bob)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateOverwritesOwner(t *testing.T) {
	ctx := context.Background()
	s, _, clk := setupTest()

	require.NoError(t, s.Create(ctx, "r1", "v1", alice))
	clk.Advance(1)
	require.NoError(t, s.Create(ctx, "r1", "v2", bob))

	rec, err := s.Read(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, Record{ID: "r1", Value: "v2", Owner: bob, LastModified: 1001}, *rec)

	// the original owner has lost control
	assert.ErrorIs(t, s.Update(ctx, "r1", "v3", alice), ErrUnauthorized)
	assert.NoError(t, s.Update(ctx, "r1", "v3", bob))
}

func TestTimestampsDoNotDecrease(t *testing.T) {
	ctx := context.Background()
	s, _, clk := setupTest()

	require.NoError(t, s.Create(ctx, "r1", "v", alice))

	require.NoError(t, s.Update(ctx, "r1", "a", alice))
	first, err := s.Read(ctx, "r1")
	require.NoError(t, err)

	clk.Set(first.LastModified - 1) // ignored, manual clock never moves back
	require.NoError(t, s.Update(ctx, "r1", "b", alice))
	second, err := s.Read(ctx, "r1")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, second.LastModified, first.LastModified)
}

func TestMalformedRecordIsFatal(t *testing.T) {
	ctx := context.Background()
	s, db, _ := setupTest()
	require.NoError(t, db.Atomic(ctx, func(a storage.Adapter) error {
		return a.Set([]byte("bad"), []byte{0x80})
	}))

	_, err := s.Read(ctx, "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrAbsentRecord)
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}
