// Package store persists recorded market snapshots on disk.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("orderly/store")

const (
	dateLayout = "2006-01-02"
	latestName = "latest.json"
)

// Journal appends one JSON document per line to <root>/<UTC date>.jsonl,
// switching files when the date of the record changes.
type Journal struct {
	root string

	mu          sync.Mutex
	currentDate string
	currentFile *os.File
	lines       int64
}

func OpenJournal(root string) (*Journal, error) {
	if root == "" {
		return nil, fmt.Errorf("journal dir required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Journal{root: root}, nil
}

// Append writes v as one line to the file for at's UTC date and refreshes
// latest.json with the same record.
func (j *Journal) Append(at time.Time, v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.rotate(at.UTC().Format(dateLayout)); err != nil {
		return err
	}
	if _, err := j.currentFile.Write(append(line, '\n')); err != nil {
		return err
	}
	j.lines++
	return writeJSONAtomic(filepath.Join(j.root, latestName), v)
}

func (j *Journal) Lines() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lines
}

func (j *Journal) Path(date time.Time) string {
	return filepath.Join(j.root, date.UTC().Format(dateLayout)+".jsonl")
}

func (j *Journal) rotate(date string) error {
	if date == j.currentDate && j.currentFile != nil {
		return nil
	}
	if err := j.closeCurrent(); err != nil {
		return err
	}
	path := filepath.Join(j.root, date+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	log.Debugw("journal file opened", "path", path)
	j.currentFile = f
	j.currentDate = date
	return nil
}

func (j *Journal) closeCurrent() error {
	if j.currentFile == nil {
		return nil
	}
	f := j.currentFile
	j.currentFile = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeCurrent()
}

func writeJSONAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir makes a preceding rename durable where the platform allows it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		log.Warnw("dir fsync skipped", "dir", dir, "err", err)
		return
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		log.Warnw("dir fsync failed", "dir", dir, "err", err)
	}
}
