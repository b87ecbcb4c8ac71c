// Package ledger provides a persistent, bbolt-backed record of job runs: a
// bucket-per-concern layout of JSON-encoded records, keyed by a stable
// fingerprint per JobSpec so an unchanged job can be skipped on repeat runs
// (NeedsRun / Memoize).
package ledger

import (
	"encoding/json"
	"hash/crc32"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"procfleet/future"
	"procfleet/status"
)

// Bucket names.
const (
	bucketRuns   = "runs"
	bucketLatest = "latest" // fingerprint -> UUID of latest run
)

// Run is a single recorded execution.
type Run struct {
	UUID        string    `json:"uuid"`
	Fingerprint string    `json:"fingerprint"`
	Path        string    `json:"path"`
	Status      string    `json:"status"` // "ok" | "nonzero" | "abnormal"
	Code        int       `json:"code,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// DB wraps a bbolt database of job run history.
type DB struct {
	bdb *bolt.DB
}

// Open opens or creates a ledger database at path, initializing its buckets
// with restrictive 0600 file permissions.
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = bdb.Update(func(tx *bolt.Tx) error {
		for _, b := range []string{bucketRuns, bucketLatest} {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, err
	}
	return &DB{bdb: bdb}, nil
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.bdb.Close()
}

// Fingerprint computes a stable identity for a JobSpec: its path, arguments,
// and working directory, CRC32-hashed to detect whether the same job has
// already run.
func Fingerprint(spec future.JobSpec) string {
	h := crc32.NewIEEE()
	h.Write([]byte(spec.Path))
	h.Write([]byte{0})
	for _, a := range spec.Args {
		h.Write([]byte(a))
		h.Write([]byte{0})
	}
	h.Write([]byte(spec.Dir))
	return uuid.NewSHA1(uuid.NameSpaceOID, h.Sum(nil)).String()
}

// Record persists one run, keyed by a fresh UUID, and updates the
// fingerprint's latest-run pointer.
func (d *DB) Record(spec future.JobSpec, st status.Status, start, end time.Time) error {
	fp := Fingerprint(spec)
	run := Run{
		UUID:        uuid.NewString(),
		Fingerprint: fp,
		Path:        spec.Path,
		StartTime:   start,
		EndTime:     end,
	}
	switch st.Kind() {
	case status.KindOk:
		run.Status = "ok"
	case status.KindNonZero:
		run.Status = "nonzero"
		run.Code = st.Code()
	default:
		run.Status = "abnormal"
		run.Detail = st.Detail()
	}

	buf, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return d.bdb.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketRuns)).Put([]byte(run.UUID), buf); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketLatest)).Put([]byte(fp), []byte(run.UUID))
	})
}

// NeedsRun reports whether spec must be executed: false only when the
// fingerprint's most recent recorded run succeeded.
func (d *DB) NeedsRun(spec future.JobSpec) (bool, error) {
	fp := Fingerprint(spec)
	var latest *Run
	err := d.bdb.View(func(tx *bolt.Tx) error {
		uuidBytes := tx.Bucket([]byte(bucketLatest)).Get([]byte(fp))
		if uuidBytes == nil {
			return nil
		}
		raw := tx.Bucket([]byte(bucketRuns)).Get(uuidBytes)
		if raw == nil {
			return nil
		}
		var r Run
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		latest = &r
		return nil
	})
	if err != nil {
		return true, err
	}
	if latest == nil {
		return true, nil
	}
	return latest.Status != "ok", nil
}

// Recent returns up to limit recorded runs, most recently started first.
// limit <= 0 means no limit.
func (d *DB) Recent(limit int) ([]Run, error) {
	var runs []Run
	err := d.bdb.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRuns)).ForEach(func(_, v []byte) error {
			var r Run
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			runs = append(runs, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].StartTime.After(runs[j].StartTime) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Memoize runs fn only if NeedsRun reports true, recording the outcome
// either way (a cached skip is itself recorded as an "ok" re-confirmation
// with zero duration), and returns the resulting Status.
func Memoize(d *DB, spec future.JobSpec, fn func(future.JobSpec) status.Status) (status.Status, error) {
	needs, err := d.NeedsRun(spec)
	if err != nil {
		return status.Abnormal(err.Error()), err
	}
	if !needs {
		now := time.Now()
		st := status.Ok()
		return st, d.Record(spec, st, now, now)
	}
	start := time.Now()
	st := fn(spec)
	return st, d.Record(spec, st, start, time.Now())
}
