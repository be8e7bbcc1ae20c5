package tiledb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	bolt "go.etcd.io/bbolt"

	"github.com/argonaut-engine/navmesh/recastcache"
)

var (
	tilesBucket = []byte("tiles")
	orderBucket = []byte("order") // sequence counter -> tile key, oldest first
)

// BoltStore is a Store backed by a single bbolt database file. Tile
// blobs are deflate-compressed before being written; navmesh data
// compresses well since it is mostly repeated small integers and
// near-planar vertex coordinates.
//
// BoltStore prunes its oldest-written rows once the database file
// exceeds maxFileSize. Pruning is checked on every Put rather than on a
// timer, since writes already only happen from the updater's worker
// pool, not from a hot path.
type BoltStore struct {
	mu          sync.Mutex
	db          *bolt.DB
	maxFileSize int64
	seq         uint64
}

// OpenBolt opens (creating if necessary) a bbolt database at path,
// bounded to maxFileSize bytes of pruning headroom. A maxFileSize <= 0
// disables pruning.
func OpenBolt(path string, maxFileSize int64) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening tile db %q: %v", path, err)
	}

	var seq uint64
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(tilesBucket); err != nil {
			return err
		}
		ob, err := tx.CreateBucketIfNotExists(orderBucket)
		if err != nil {
			return err
		}
		if k, _ := ob.Cursor().Last(); k != nil {
			seq = binary.BigEndian.Uint64(k)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing tile db %q: %v", path, err)
	}

	return &BoltStore{db: db, maxFileSize: maxFileSize, seq: seq}, nil
}

func encodeRow(r Row) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, r.Version.Generation); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.Version.Revision); err != nil {
		return nil, err
	}

	zw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(r.Data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRow(b []byte) (Row, error) {
	if len(b) < 16 {
		return Row{}, fmt.Errorf("tiledb: short row (%d bytes)", len(b))
	}
	r := Row{Version: recastcache.Version{
		Generation: binary.BigEndian.Uint64(b[0:8]),
		Revision:   binary.BigEndian.Uint64(b[8:16]),
	}}

	zr := flate.NewReader(bytes.NewReader(b[16:]))
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return Row{}, fmt.Errorf("tiledb: decompressing row: %v", err)
	}
	if len(data) > 0 {
		r.Data = data
	}
	return r, nil
}

// Get implements Store.
func (s *BoltStore) Get(key Key) (Row, bool, error) {
	var row Row
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(tilesBucket).Get(key.encode())
		if v == nil {
			return nil
		}
		found = true
		r, err := decodeRow(v)
		if err != nil {
			return err
		}
		row = r
		return nil
	})
	return row, found, err
}

// Put implements Store.
func (s *BoltStore) Put(key Key, row Row) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	encoded, err := encodeRow(row)
	if err != nil {
		return fmt.Errorf("tiledb: encoding row: %v", err)
	}

	var seqKey [8]byte
	binary.BigEndian.PutUint64(seqKey[:], seq)

	err = s.db.Update(func(tx *bolt.Tx) error {
		tiles := tx.Bucket(tilesBucket)
		if err := tiles.Put(key.encode(), encoded); err != nil {
			return err
		}
		return tx.Bucket(orderBucket).Put(seqKey[:], key.encode())
	})
	if err != nil {
		return fmt.Errorf("tiledb: writing row: %v", err)
	}

	return s.pruneIfOversize()
}

func (s *BoltStore) pruneIfOversize() error {
	if s.maxFileSize <= 0 {
		return nil
	}
	if s.db.Stats().TxStats.PageCount == 0 {
		return nil
	}
	path := s.db.Path()
	size, err := fileSize(path)
	if err != nil || size <= s.maxFileSize {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		ob := tx.Bucket(orderBucket)
		tiles := tx.Bucket(tilesBucket)
		c := ob.Cursor()
		// Drop the oldest quarter of known rows; bbolt only reclaims
		// file space gradually, so a single pass keeps growth bounded
		// without fsyncing on every Put.
		target := ob.Stats().KeyN / 4
		if target < 1 {
			target = 1
		}
		k, v := c.First()
		for i := 0; k != nil && i < target; i++ {
			if err := tiles.Delete(v); err != nil {
				return err
			}
			if err := c.Delete(); err != nil {
				return err
			}
			k, v = c.Next()
		}
		return nil
	})
}

// Stats reports the number of resident tile rows and the database
// file's current size on disk, for operator/CLI inspection.
func (s *BoltStore) Stats() (tiles int, bytes int64, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		tiles = tx.Bucket(tilesBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	bytes, err = fileSize(s.db.Path())
	return tiles, bytes, err
}

// Delete implements Store.
func (s *BoltStore) Delete(key Key) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(tilesBucket).Delete(key.encode())
	})
}

// Close implements Store.
func (s *BoltStore) Close() error { return s.db.Close() }
