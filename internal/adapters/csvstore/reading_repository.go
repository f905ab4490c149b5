package csvstore

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// ReadingRepository implements domain.ReadingRepository on a single CSV file.
// The version token is the SHA-256 of the file content. Writers in this
// process are serialised; writers in other processes can still race between
// the version check and the rename.
type ReadingRepository struct {
	mu   sync.Mutex
	path string
}

// NewReadingRepository creates a repository backed by the CSV file at path.
// The file and its directory are created on the first Save.
func NewReadingRepository(path string) *ReadingRepository {
	return &ReadingRepository{path: path}
}

// Path returns the backing file location
func (r *ReadingRepository) Path() string {
	return r.path
}

// Load reads and validates the whole file
func (r *ReadingRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	data, version, err := r.read()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return &domain.Snapshot{Readings: []domain.EngineReading{}, Version: version}, nil
	}

	batch, err := decode(data)
	if err != nil {
		return nil, &domain.StorageError{Op: "decode", Path: r.path, Err: err}
	}

	// a corrupt store is a storage fault, not a bad request
	readings, err := domain.ValidateSchema(batch)
	if err != nil {
		return nil, &domain.StorageError{Op: "validate", Path: r.path, Err: err}
	}

	log.Debug().Str("path", r.path).Int("count", len(readings)).Msg("loaded readings")
	return &domain.Snapshot{Readings: readings, Version: version}, nil
}

// Save overwrites the file with readings via a temp file and rename, so a
// concurrent Load sees either the old or the new content
func (r *ReadingRepository) Save(ctx context.Context, readings []domain.EngineReading, expectedVersion string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, current, err := r.read()
	if err != nil {
		return "", err
	}
	if current != expectedVersion {
		log.Warn().
			Str("path", r.path).
			Str("expected", expectedVersion).
			Str("current", current).
			Msg("store changed since load")
		return "", domain.ErrConflict
	}

	data, err := encode(readings)
	if err != nil {
		return "", &domain.StorageError{Op: "encode", Path: r.path, Err: err}
	}

	if err := writeAtomic(r.path, data); err != nil {
		return "", err
	}

	log.Debug().Str("path", r.path).Int("count", len(readings)).Msg("saved readings")
	return checksum(data), nil
}

// read returns the file content and its version; a missing file is empty
func (r *ReadingRepository) read() ([]byte, string, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", &domain.StorageError{Op: "read", Path: r.path, Err: err}
	}
	return data, checksum(data), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return &domain.StorageError{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	fail := func(op string, err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.StorageError{Op: op, Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func encode(readings []domain.EngineReading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(domain.ColumnNames()); err != nil {
		return nil, err
	}
	for _, reading := range readings {
		if err := w.Write(domain.Row(reading)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) (domain.TabularBatch, error) {
	rd := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	rd.FieldsPerRecord = -1

	rows, err := rd.ReadAll()
	if err != nil {
		return domain.TabularBatch{}, err
	}
	if len(rows) == 0 {
		return domain.TabularBatch{Header: domain.ColumnNames()}, nil
	}
	return domain.TabularBatch{Header: rows[0], Rows: rows[1:]}, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
