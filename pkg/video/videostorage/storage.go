package videostorage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/tauraamui/mapinterp/pkg/video/videoframe"
	"github.com/tauraamui/xerror"

	_ "github.com/mattn/go-sqlite3"
)

// Storage keeps fetched sample frames keyed by an opaque string.
type Storage interface {
	SaveFrame(key string, frame videoframe.Frame) error
	LoadFrame(key string) (videoframe.Frame, bool, error)
	Close() error
}

func NewStorage(path string) (Storage, error) {
	return newSQLite3Storage(path)
}

type sqlite3Storage struct {
	db *sql.DB
}

type frameRecord struct {
	W         int        `cbor:"w"`
	H         int        `cbor:"h"`
	Pix       []byte     `cbor:"pix"`
	Timestamp *time.Time `cbor:"ts,omitempty"`
}

func newSQLite3Storage(path string) (*sqlite3Storage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := sqlite3Storage{db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, xerror.Errorf("unable to initialise frame storage: %w", err)
	}

	return &s, nil
}

func (s *sqlite3Storage) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS frames(key TEXT PRIMARY KEY, stored INTEGER, data BLOB) WITHOUT ROWID;
	`)

	return err
}

func (s *sqlite3Storage) SaveFrame(key string, frame videoframe.Frame) error {
	blob, err := cbor.Marshal(frameRecord{
		W: frame.Dims.W, H: frame.Dims.H, Pix: frame.Pix, Timestamp: frame.Timestamp,
	})
	if err != nil {
		return xerror.Errorf("unable to encode frame: %w", err)
	}

	_, err = s.db.Exec("INSERT OR REPLACE INTO frames(key, stored, data) VALUES (?, ?, ?);", key, time.Now().Unix(), blob)
	return err
}

func (s *sqlite3Storage) LoadFrame(key string) (videoframe.Frame, bool, error) {
	var blob []byte
	err := s.db.QueryRow("SELECT data FROM frames WHERE key = ?;", key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return videoframe.Frame{}, false, nil
	}
	if err != nil {
		return videoframe.Frame{}, false, err
	}

	rec := frameRecord{}
	if err := cbor.Unmarshal(blob, &rec); err != nil {
		return videoframe.Frame{}, false, xerror.Errorf("unable to decode stored frame %s: %w", key, err)
	}
	dims := videoframe.Dimensions{W: rec.W, H: rec.H}
	if !dims.Valid() || len(rec.Pix) != rec.W*rec.H*videoframe.Channels {
		return videoframe.Frame{}, false, xerror.Errorf("stored frame %s is corrupt", key)
	}
	return videoframe.Frame{Dims: dims, Pix: rec.Pix, Timestamp: rec.Timestamp}, true, nil
}

func (s *sqlite3Storage) Close() error {
	return s.db.Close()
}
