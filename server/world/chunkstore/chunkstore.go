// Package chunkstore persists generated chunks in a LevelDB database.
//
// Chunks are stored as little endian NBT compressed with zstd. The key of a
// chunk is the FNV-1a hash of its dimension followed by the chunk coordinates,
// so that several dimensions can share a database.
package chunkstore

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/dm-vev/adamant-worldgen/server/world/generator/noisegen"
	"github.com/dm-vev/adamant-worldgen/server/world/registry"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/fasthash/fnv1a"
)

// Config holds the optional parameters of a DB.
type Config struct {
	// Log is the Logger used by the DB. If nil, slog.Default() is used.
	Log *slog.Logger
	// Blocks resolves the block states of stored chunks. Chunks must be saved
	// and loaded with the same registry, or one that registered the same
	// blocks. If nil, registry.Vanilla() is used.
	Blocks *registry.Registry
	// Level is the zstd compression level. The zero value is
	// zstd.SpeedDefault.
	Level zstd.EncoderLevel
	// LDBOptions holds LevelDB specific options. Compression is disabled by
	// default since chunks are compressed before they are written.
	LDBOptions *opt.Options
}

// DB is a chunk store backed by LevelDB. It is safe for concurrent use.
type DB struct {
	conf Config
	ldb  *leveldb.DB

	enc *zstd.Encoder
	dec *zstd.Decoder

	closeOnce sync.Once
}

// Open creates a new DB reading and writing from/to files under the path
// passed. If a world is present at the path, Open reads from it.
func (conf Config) Open(dir string) (*DB, error) {
	if conf.Log == nil {
		conf.Log = slog.Default()
	}
	if conf.Blocks == nil {
		conf.Blocks = registry.Vanilla()
	}
	if conf.Level == 0 {
		conf.Level = zstd.SpeedDefault
	}
	if conf.LDBOptions == nil {
		conf.LDBOptions = &opt.Options{Compression: opt.NoCompression, BlockSize: 16 * opt.KiB}
	}
	if err := os.MkdirAll(dir, 0o777); err != nil {
		return nil, fmt.Errorf("create chunk store directory: %w", err)
	}
	ldb, err := leveldb.OpenFile(dir, conf.LDBOptions)
	if err != nil {
		return nil, fmt.Errorf("open chunk store: %w", err)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(conf.Level))
	if err != nil {
		_ = ldb.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = ldb.Close()
		return nil, err
	}
	conf.Log = conf.Log.With("dir", dir)
	conf.Log.Debug("Opened chunk store.")
	return &DB{conf: conf, ldb: ldb, enc: enc, dec: dec}, nil
}

// Open opens a DB at dir with default options that resolves blocks with the
// registry passed.
func Open(dir string, blocks *registry.Registry) (*DB, error) {
	return Config{Blocks: blocks}.Open(dir)
}

// Save stores a chunk of the dimension passed, replacing any chunk stored at
// the same position.
func (db *DB) Save(dim string, c *noisegen.Chunk) error {
	data, err := db.encode(c)
	if err != nil {
		return fmt.Errorf("encode chunk %v: %w", c.Pos(), err)
	}
	return db.ldb.Put(key(dim, c.Pos()), data, nil)
}

// SaveBatch stores several chunks of the dimension passed. Either all of
// them are stored or none is.
func (db *DB) SaveBatch(dim string, chunks []*noisegen.Chunk) error {
	b := new(leveldb.Batch)
	for _, c := range chunks {
		data, err := db.encode(c)
		if err != nil {
			return fmt.Errorf("encode chunk %v: %w", c.Pos(), err)
		}
		b.Put(key(dim, c.Pos()), data)
	}
	return db.ldb.Write(b, nil)
}

// Load reads the chunk of the dimension at the position passed. If no chunk
// is stored there, an error matching leveldb.ErrNotFound is returned.
func (db *DB) Load(dim string, pos noisegen.ChunkPos) (*noisegen.Chunk, error) {
	data, err := db.ldb.Get(key(dim, pos), nil)
	if err != nil {
		return nil, fmt.Errorf("load chunk %v: %w", pos, err)
	}
	c, err := db.decode(pos, data)
	if err != nil {
		return nil, fmt.Errorf("decode chunk %v: %w", pos, err)
	}
	return c, nil
}

// Has checks if a chunk of the dimension is stored at the position passed.
func (db *DB) Has(dim string, pos noisegen.ChunkPos) (bool, error) {
	return db.ldb.Has(key(dim, pos), nil)
}

// Close closes the DB. Calling Close more than once is a no-op.
func (db *DB) Close() (err error) {
	db.closeOnce.Do(func() {
		db.conf.Log.Debug("Closing chunk store.")
		db.dec.Close()
		_ = db.enc.Close()
		err = db.ldb.Close()
	})
	return err
}

// key returns the database key of a chunk: the FNV-1a hash of the dimension
// followed by the little endian x and z of the chunk.
func key(dim string, pos noisegen.ChunkPos) []byte {
	k := make([]byte, 16)
	binary.LittleEndian.PutUint64(k, fnv1a.HashString64(dim))
	binary.LittleEndian.PutUint32(k[8:], uint32(pos.X()))
	binary.LittleEndian.PutUint32(k[12:], uint32(pos.Z()))
	return k
}
