package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// userFile is the on-disk layout of <stats_dir>/<user_id>.json.
type userFile struct {
	Tests []AttemptRecord `json:"tests"`
}

// FileRepo keeps one JSON document per user. Writes replace the document
// atomically so a reader never sees a half-written history.
type FileRepo struct {
	dir string

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

var _ HistoryRepo = (*FileRepo)(nil)

// NewFileRepo returns a FileRepo rooted at dir, creating it if needed.
func NewFileRepo(dir string) (*FileRepo, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create stats dir: %w", err)
	}
	return &FileRepo{dir: dir, locks: make(map[int64]*sync.Mutex)}, nil
}

func (r *FileRepo) userLock(userID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	return l
}

func (r *FileRepo) path(userID int64) string {
	return filepath.Join(r.dir, strconv.FormatInt(userID, 10)+".json")
}

func (r *FileRepo) Append(ctx context.Context, userID int64, rec AttemptRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l := r.userLock(userID)
	l.Lock()
	defer l.Unlock()

	doc, err := r.load(userID)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &PersistenceError{Op: "append", UserID: userID, Err: err}
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now().UTC()
	}
	if slices.ContainsFunc(doc.Tests, func(a AttemptRecord) bool { return a.ID == rec.ID }) {
		return nil
	}
	doc.Tests = append(doc.Tests, rec)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "append", UserID: userID, Err: err}
	}
	if err := writeFileAtomic(r.path(userID), data); err != nil {
		return &PersistenceError{Op: "append", UserID: userID, Err: err}
	}
	return nil
}

func (r *FileRepo) ReadAll(ctx context.Context, userID int64) ([]AttemptRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l := r.userLock(userID)
	l.Lock()
	defer l.Unlock()

	doc, err := r.load(userID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", UserID: userID, Err: err}
	}
	if len(doc.Tests) == 0 {
		return nil, ErrNotFound
	}
	return doc.Tests, nil
}

func (r *FileRepo) ReadAllUsers(ctx context.Context) ([]UserHistory, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	var ids []int64
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]UserHistory, 0, len(ids))
	for _, id := range ids {
		attempts, err := r.ReadAll(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, UserHistory{UserID: id, Attempts: attempts})
	}
	return out, nil
}

// load reads and decodes the user's document. The returned error wraps
// fs.ErrNotExist when the user has no file yet.
func (r *FileRepo) load(userID int64) (userFile, error) {
	var doc userFile
	data, err := os.ReadFile(r.path(userID))
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return userFile{}, fmt.Errorf("decode %s: %w", r.path(userID), err)
	}
	return doc, nil
}

// writeFileAtomic writes data to a temp file in the target directory,
// fsyncs it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	// Persist the rename itself. Not every platform can fsync a directory.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		d.Close()
	}
	return nil
}
