// Package badger implements a BadgerDB-backed range store.
//
// Hydrated ranges are written through to an embedded key-value store in an
// ephemeral per-mount directory, keeping large hydrated working sets out of
// the Go heap. This is NOT persistence: the directory is created fresh when
// the store opens and removed when it closes, so a new mount always starts
// fully unhydrated.
package badger

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/DrChat/razmount/internal/logger"
	"github.com/DrChat/razmount/pkg/rangestore"
)

// blockSize is the granularity of storage. Hydration requests are diced into
// fixed blocks so that a range write never rewrites more than its neighboring
// partial blocks.
const blockSize = 64 * 1024

// Store implements rangestore.Store on BadgerDB.
//
// Key Schema:
//
//	c/<pathKey>\x00<tag>\x00<block index, 8 bytes big-endian> -> block bytes
//
// The embedded NUL separators keep path keys with any printable content
// unambiguous, and big-endian block indexes make per-file keys contiguous
// for prefix scans during Discard.
//
// Thread Safety:
// BadgerDB transactions provide isolation; concurrent WriteAt calls for the
// same path are already serialized by the hydration engine, so read-modify-
// write of partial edge blocks does not race.
type Store struct {
	db      *badger.DB
	dir     string
	ownsDir bool
}

// Config contains configuration for the badger range store.
type Config struct {
	// Dir is the backing directory. Empty selects a fresh directory under
	// the system temp dir, removed on Close.
	Dir string

	// BlockCacheSizeMB sizes Badger's block cache (default 64).
	BlockCacheSizeMB int64
}

// New opens a badger range store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := cfg.Dir
	ownsDir := false
	if dir == "" {
		d, err := os.MkdirTemp("", "razmount-hydrated-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create hydration dir: %w", err)
		}
		dir = d
		ownsDir = true
	}

	blockCacheMB := cfg.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}

	// Hydrated content is bulk data fetched over the network; compression
	// would only re-spend CPU on bytes the store already paid latency for.
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.WARNING).
		WithCompression(options.None).
		WithBlockCacheSize(blockCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		if ownsDir {
			_ = os.RemoveAll(dir)
		}
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", dir, err)
	}

	logger.Info("Badger range store opened: dir=%s block_size=%d", dir, blockSize)

	return &Store{db: db, dir: dir, ownsDir: ownsDir}, nil
}

func blockKey(pathKey, tag string, block uint64) []byte {
	key := make([]byte, 0, 2+len(pathKey)+1+len(tag)+1+8)
	key = append(key, 'c', '/')
	key = append(key, pathKey...)
	key = append(key, 0)
	key = append(key, tag...)
	key = append(key, 0)
	key = binary.BigEndian.AppendUint64(key, block)
	return key
}

func pathPrefix(pathKey string) []byte {
	key := make([]byte, 0, 2+len(pathKey)+1)
	key = append(key, 'c', '/')
	key = append(key, pathKey...)
	key = append(key, 0)
	return key
}

// WriteAt stores data at the given offset, block by block. Partial edge
// blocks are read-modify-written; interior blocks are replaced whole.
func (s *Store) WriteAt(ctx context.Context, pathKey, tag string, offset uint64, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		remaining := data
		pos := offset

		for len(remaining) > 0 {
			block := pos / blockSize
			inBlock := pos % blockSize

			n := uint64(len(remaining))
			if space := blockSize - inBlock; n > space {
				n = space
			}

			key := blockKey(pathKey, tag, block)

			var blockData []byte
			if inBlock != 0 || n < blockSize {
				// Partial block: merge with what is already there.
				item, err := txn.Get(key)
				switch err {
				case nil:
					blockData, err = item.ValueCopy(nil)
					if err != nil {
						return fmt.Errorf("failed to read block %d of %s: %w", block, pathKey, err)
					}
				case badger.ErrKeyNotFound:
					// New block
				default:
					return fmt.Errorf("failed to read block %d of %s: %w", block, pathKey, err)
				}
			}

			if need := inBlock + n; uint64(len(blockData)) < need {
				grown := make([]byte, need)
				copy(grown, blockData)
				blockData = grown
			}
			copy(blockData[inBlock:inBlock+n], remaining[:n])

			if err := txn.Set(key, blockData); err != nil {
				return fmt.Errorf("failed to write block %d of %s: %w", block, pathKey, err)
			}

			remaining = remaining[n:]
			pos += n
		}

		return nil
	})
}

// ReadAt fills buf from the given offset. Any missing block or missing byte
// within a block surfaces as ErrRangeNotResident.
func (s *Store) ReadAt(ctx context.Context, pathKey, tag string, buf []byte, offset uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(buf) == 0 {
		return nil
	}

	return s.db.View(func(txn *badger.Txn) error {
		remaining := buf
		pos := offset

		for len(remaining) > 0 {
			block := pos / blockSize
			inBlock := pos % blockSize

			n := uint64(len(remaining))
			if space := blockSize - inBlock; n > space {
				n = space
			}

			item, err := txn.Get(blockKey(pathKey, tag, block))
			if err == badger.ErrKeyNotFound {
				return fmt.Errorf("%s block %d: %w", pathKey, block, rangestore.ErrRangeNotResident)
			}
			if err != nil {
				return fmt.Errorf("failed to read block %d of %s: %w", block, pathKey, err)
			}

			blockData, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("failed to read block %d of %s: %w", block, pathKey, err)
			}
			if uint64(len(blockData)) < inBlock+n {
				return fmt.Errorf("%s block %d short: %w", pathKey, block, rangestore.ErrRangeNotResident)
			}

			copy(remaining[:n], blockData[inBlock:inBlock+n])
			remaining = remaining[n:]
			pos += n
		}

		return nil
	})
}

// Discard drops all blocks held for a path, under any tag.
func (s *Store) Discard(ctx context.Context, pathKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := pathPrefix(pathKey)

	// Collect-then-delete: Badger forbids writes while iterating.
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan blocks of %s: %w", pathKey, err)
	}

	if len(keys) == 0 {
		return nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return fmt.Errorf("failed to delete block of %s: %w", pathKey, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to flush deletes for %s: %w", pathKey, err)
	}

	return nil
}

// Close closes the database and removes the backing directory when the store
// created it, so hydrated content never outlives the mount.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.ownsDir {
		if rmErr := os.RemoveAll(s.dir); rmErr != nil && err == nil {
			err = rmErr
		}
	}
	return err
}

// Dir returns the backing directory, for diagnostics.
func (s *Store) Dir() string {
	return filepath.Clean(s.dir)
}
