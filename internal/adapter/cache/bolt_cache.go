package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyModel      = []byte("model")
)

type storedVector struct {
	Vector []float32 `json:"v"`
}

type modelInfo struct {
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

// BoltCache persists document embeddings between runs so a cold start does not
// re-embed unchanged chunks. The corpus index itself is still rebuilt in memory.
// Entries are dropped when the model or dimension changes.
type BoltCache struct {
	db    *bbolt.DB
	model string
}

func OpenBoltCache(path, model string, dimension int) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	want := modelInfo{Model: model, Dimension: dimension}
	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketMeta, err)
		}

		var have modelInfo
		if data := meta.Get(keyModel); data != nil {
			_ = json.Unmarshal(data, &have)
		}
		if have != want && tx.Bucket(bucketVectors) != nil {
			if err := tx.DeleteBucket(bucketVectors); err != nil {
				return fmt.Errorf("failed to reset vectors: %w", err)
			}
		}
		if _, err := tx.CreateBucketIfNotExists(bucketVectors); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketVectors, err)
		}

		data, err := json.Marshal(want)
		if err != nil {
			return err
		}
		return meta.Put(keyModel, data)
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltCache{db: db, model: model}, nil
}

// GetMany returns the cached vectors for texts, keyed by position in texts.
func (c *BoltCache) GetMany(texts []string) (map[int][]float32, error) {
	found := make(map[int][]float32)
	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for i, text := range texts {
			data := b.Get([]byte(Key(c.model, text)))
			if data == nil {
				continue
			}
			var stored storedVector
			if err := json.Unmarshal(data, &stored); err != nil {
				continue // treat corrupted entries as misses
			}
			found[i] = stored.Vector
		}
		return nil
	})
	return found, err
}

// PutMany stores vectors[i] for texts[i] in one transaction.
func (c *BoltCache) PutMany(texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("cache put: %d texts but %d vectors", len(texts), len(vectors))
	}
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		for i, text := range texts {
			data, err := json.Marshal(storedVector{Vector: vectors[i]})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(Key(c.model, text)), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *BoltCache) Count() (int, error) {
	var n int
	err := c.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketVectors).Stats().KeyN
		return nil
	})
	return n, err
}

func (c *BoltCache) Close() error {
	return c.db.Close()
}
