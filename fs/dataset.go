// Package fs provides Apify-style local storage on the file system.
//
// The layout follows the Apify SDK's local storage directory:
//
//	storage/datasets/<name>/000000001.json
//	storage/key_value_stores/<name>/INPUT.json
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fwojciec/medreg"
)

// DefaultStorageDir is the storage root used when none is configured.
const DefaultStorageDir = "./storage"

// DefaultName names the default dataset and key-value store.
const DefaultName = "default"

// itemWidth is the zero-padded width of dataset item file names.
const itemWidth = 9

// Ensure DatasetStore implements medreg.DatasetStore and
// medreg.RecordReader at compile time.
var (
	_ medreg.DatasetStore = (*DatasetStore)(nil)
	_ medreg.RecordReader = (*DatasetStore)(nil)
)

// DatasetStore writes every record as its own JSON file. Numbering continues
// after the highest existing item, so repeated runs append to the dataset.
// Each item is written to a temporary file and renamed into place.
type DatasetStore struct {
	dir string

	mu   sync.Mutex
	next int // 0 until the directory has been scanned
}

// NewDatasetStore creates a store for the named dataset below storageDir.
func NewDatasetStore(storageDir, name string) *DatasetStore {
	return &DatasetStore{dir: DatasetDir(storageDir, name)}
}

// DatasetDir returns the directory of the named dataset.
func DatasetDir(storageDir, name string) string {
	if storageDir == "" {
		storageDir = DefaultStorageDir
	}
	if name == "" {
		name = DefaultName
	}
	return filepath.Join(storageDir, "datasets", name)
}

// Dir returns the dataset directory.
func (s *DatasetStore) Dir() string { return s.dir }

// PushData implements medreg.DatasetStore.
func (s *DatasetStore) PushData(ctx context.Context, records ...medreg.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}
	if s.next == 0 {
		last, err := lastItem(s.dir)
		if err != nil {
			return err
		}
		s.next = last + 1
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return medreg.Errorf(medreg.EINVALID, "encode record %s: %v", rec.String(medreg.FieldURL), err)
		}
		if err := writeAtomic(filepath.Join(s.dir, itemName(s.next)), data); err != nil {
			return err
		}
		s.next++
	}
	return nil
}

// FindRecords implements medreg.RecordReader. The item number is the
// record ID and the file's modification time its creation time.
func (s *DatasetStore) FindRecords(ctx context.Context, filter medreg.RecordFilter) ([]*medreg.StoredRecord, error) {
	all, err := s.items(ctx)
	if err != nil {
		return nil, err
	}

	var out []*medreg.StoredRecord
	skip := filter.Offset
	for _, rec := range all {
		if filter.Source != nil && rec.Source != *filter.Source {
			continue
		}
		if filter.URL != nil && rec.URL != *filter.URL {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, rec)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// CountRecords implements medreg.RecordReader.
func (s *DatasetStore) CountRecords(ctx context.Context, source string) (int, error) {
	filter := medreg.RecordFilter{}
	if source != "" {
		filter.Source = &source
	}
	recs, err := s.FindRecords(ctx, filter)
	return len(recs), err
}

// items reads every item of the dataset in item order.
func (s *DatasetStore) items(ctx context.Context) ([]*medreg.StoredRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var out []*medreg.StoredRecord
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, ok := itemNumber(e.Name()); !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var rec medreg.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Name(), err)
		}
		out = append(out, &medreg.StoredRecord{
			ID:        strings.TrimSuffix(e.Name(), ".json"),
			Source:    rec.String(medreg.FieldSource),
			URL:       rec.String(medreg.FieldURL),
			Data:      rec,
			CreatedAt: info.ModTime().UTC(),
		})
	}
	return out, nil
}

// Purge removes every item of the dataset.
func (s *DatasetStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
	return os.RemoveAll(s.dir)
}

func itemName(n int) string {
	return fmt.Sprintf("%0*d.json", itemWidth, n)
}

func itemNumber(name string) (int, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok || len(base) != itemWidth {
		return 0, false
	}
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0, false
	}
	return n, true
}

func lastItem(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	last := 0
	for _, e := range entries {
		if n, ok := itemNumber(e.Name()); ok && n > last {
			last = n
		}
	}
	return last, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
