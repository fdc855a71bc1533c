package kv

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// ZstdStore compresses values before handing them to the wrapped Store.
type ZstdStore struct {
	inner Store
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// Zstd wraps inner so that values are zstd-compressed at rest.
func Zstd(inner Store) (*ZstdStore, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &ZstdStore{inner: inner, enc: enc, dec: dec}, nil
}

// Get decompresses the stored value. Values written before compression was
// enabled carry no zstd frame and are returned as stored.
func (z *ZstdStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := z.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(raw, zstdMagic) {
		return raw, nil
	}
	out, err := z.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode %s: %w", key, err)
	}
	return out, nil
}

func (z *ZstdStore) Set(ctx context.Context, key string, value []byte) error {
	return z.inner.Set(ctx, key, z.enc.EncodeAll(value, nil))
}

func (z *ZstdStore) Close() error {
	z.enc.Close()
	z.dec.Close()
	return z.inner.Close()
}
