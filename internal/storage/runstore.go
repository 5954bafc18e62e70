package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"plstream-engine/internal/types"
)

var (
	bucketBatches = []byte("batches")
	bucketState   = []byte("state")

	keyTrend = []byte("trend")
)

// TrendCheckpoint is the persisted form of the temporal trend counters.
type TrendCheckpoint struct {
	PosCount uint64 `json:"pos_count"`
	NegCount uint64 `json:"neg_count"`
}

// BoltRunStore records batch reports and trend checkpoints in bbolt. It is
// observability only: classification never reads it back.
type BoltRunStore struct {
	db *bbolt.DB
}

// NewBoltRunStore opens (or creates) the run store at path.
func NewBoltRunStore(path string) (*BoltRunStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketBatches); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketState); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRunStore{db: db}, nil
}

// SaveBatch stores one batch report, keyed by batch index so iteration
// returns reports in processing order.
func (s *BoltRunStore) SaveBatch(report types.BatchReport) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketBatches)
		data, err := json.Marshal(report)
		if err != nil {
			return err
		}
		return b.Put(batchKey(report.Index), data)
	})
}

// Batches returns all stored batch reports in processing order.
func (s *BoltRunStore) Batches() ([]types.BatchReport, error) {
	var reports []types.BatchReport
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBatches).ForEach(func(k, v []byte) error {
			var r types.BatchReport
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("batch %x: %w", k, err)
			}
			reports = append(reports, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// SaveTrend overwrites the trend checkpoint.
func (s *BoltRunStore) SaveTrend(cp TrendCheckpoint) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(cp)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketState).Put(keyTrend, data)
	})
}

// Trend returns the stored trend checkpoint, or a zero checkpoint when none
// has been saved yet.
func (s *BoltRunStore) Trend() (TrendCheckpoint, error) {
	var cp TrendCheckpoint
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketState).Get(keyTrend)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &cp)
	})
	return cp, err
}

// Close closes the underlying database.
func (s *BoltRunStore) Close() error {
	return s.db.Close()
}

// batchKey encodes the index big-endian so bbolt's byte ordering matches
// processing order.
func batchKey(index int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(index))
	return k
}
