// Package codec defines how records are laid out in a storage slot.
//
// Values are written in the protobuf wire format without generated types:
//
//	Pair     {1: sint32 quantity, 2: sint32 price}
//	Products {1: repeated Entry}, Entry {1: string name, 2: Pair}
//	Triple   {1: bytes value, 2: string owner, 3: uint64 last_modified}
//
// Unknown fields are skipped. Anything that does not parse is ErrMalformed.
package codec

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/kpfaulkner/ledgerstore/pkg/identity"
)

var ErrMalformed = errors.New("malformed record")

// Pair is the stored shape of a product, [quantity, price].
type Pair struct {
	Quantity int32
	Price    int32
}

// Triple is the stored shape of an owned record, [value, owner, last_modified].
type Triple struct {
	Value        string
	Owner        identity.Address
	LastModified uint64
}

func appendSint32(b []byte, num protowire.Number, v int32) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(int64(v)))
}

func EncodePair(p Pair) []byte {
	var b []byte
	b = appendSint32(b, 1, p.Quantity)
	b = appendSint32(b, 2, p.Price)
	return b
}

func DecodePair(b []byte) (Pair, error) {
	var p Pair
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeSint32(b, &p.Quantity)
		case num == 2 && typ == protowire.VarintType:
			return consumeSint32(b, &p.Price)
		}
		return skip(num, typ, b)
	})
	if err != nil {
		return Pair{}, fmt.Errorf("decode pair: %w", err)
	}
	return p, nil
}

// EncodeProducts writes entries in ascending name order, so equal maps give equal bytes.
func EncodeProducts(products map[string]Pair) []byte {
	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.Strings(names)

	var b []byte
	for _, name := range names {
		var entry []byte
		entry = protowire.AppendTag(entry, 1, protowire.BytesType)
		entry = protowire.AppendString(entry, name)
		entry = protowire.AppendTag(entry, 2, protowire.BytesType)
		entry = protowire.AppendBytes(entry, EncodePair(products[name]))

		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func DecodeProducts(b []byte) (map[string]Pair, error) {
	products := make(map[string]Pair)
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return skip(num, typ, b)
		}
		entry, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		name, pair, err := decodeEntry(entry)
		if err != nil {
			return 0, err
		}
		products[name] = pair
		return n, nil
	})
	if err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

func decodeEntry(b []byte) (string, Pair, error) {
	var name string
	var pair Pair
	var hasName bool
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			name, hasName = v, true
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			p, err := DecodePair(v)
			if err != nil {
				return 0, err
			}
			pair = p
			return n, nil
		}
		return skip(num, typ, b)
	})
	if err != nil {
		return "", Pair{}, err
	}
	if !hasName {
		return "", Pair{}, fmt.Errorf("%w: product entry without name", ErrMalformed)
	}
	return name, pair, nil
}

func EncodeTriple(t Triple) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, t.Value)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, string(t.Owner))
	b = protowire.AppendTag(b, 3, protowire.VarintType)
	b = protowire.AppendVarint(b, t.LastModified)
	return b
}

func DecodeTriple(b []byte) (Triple, error) {
	var t Triple
	var hasOwner bool
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			t.Value = v
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			t.Owner, hasOwner = identity.Address(v), true
			return n, nil
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			t.LastModified = v
			return n, nil
		}
		return skip(num, typ, b)
	})
	if err != nil {
		return Triple{}, fmt.Errorf("decode triple: %w", err)
	}
	if !hasOwner {
		return Triple{}, fmt.Errorf("decode triple: %w: missing owner", ErrMalformed)
	}
	return t, nil
}

// walk calls field for each field in b. field returns how many bytes of its value it consumed.
func walk(b []byte, field func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		m, err := field(num, typ, b)
		if err != nil {
			if errors.Is(err, ErrMalformed) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		b = b[m:]
	}
	return nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	return n, nil
}

func consumeSint32(b []byte, out *int32) (int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}
	d := protowire.DecodeZigZag(v)
	if d < math.MinInt32 || d > math.MaxInt32 {
		return 0, fmt.Errorf("%w: value %d overflows int32", ErrMalformed, d)
	}
	*out = int32(d)
	return n, nil
}
