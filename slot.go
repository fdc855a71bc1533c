package folio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eringen/folio/kv"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// OpenSlot opens the key-value medium named by cfg.StoreBackend, wrapped in
// zstd compression when cfg.StoreCompress is set.
func OpenSlot(ctx context.Context, cfg SiteConfig) (kv.Store, error) {
	var (
		slot kv.Store
		err  error
	)
	switch cfg.StoreBackend {
	case BackendMemory:
		slot = kv.NewMemory()
	case BackendSQLite, "":
		slot, err = kv.NewSQLite(cfg.DatabasePath)
	case BackendS3:
		slot, err = kv.NewS3(ctx, kv.S3Config{
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case BackendPostgres:
		slot, err = kv.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}
	if !cfg.StoreCompress {
		return slot, nil
	}
	compressed, err := kv.Zstd(slot)
	if err != nil {
		slot.Close()
		return nil, err
	}
	return compressed, nil
}

// OpenStore opens the configured slot and returns a PostStore over it. The
// caller closes the returned kv.Store.
func OpenStore(ctx context.Context, cfg SiteConfig, log zerolog.Logger) (*PostStore, kv.Store, error) {
	slot, err := OpenSlot(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	store := NewPostStore(slot,
		WithKey(cfg.StoreKey),
		WithLogger(log.With().Str("component", "store").Str("backend", cfg.StoreBackend).Logger()),
	)
	return store, slot, nil
}
