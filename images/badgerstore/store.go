package badgerstore

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/jrsteele09/wedding-site/images"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"
)

const keyPrefix = "image:"

var _ images.Repo = (*Store)(nil)

// record is the CBOR value stored per image.
type record struct {
	ContentType  string `cbor:"1,keyasint"`
	CacheControl string `cbor:"2,keyasint"`
	ETag         string `cbor:"3,keyasint"`
	CreatedAt    int64  `cbor:"4,keyasint"`
	Data         []byte `cbor:"5,keyasint"`
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("badgerstore: CBOR encoder initialization failed: " + err.Error())
	}
}

// Store keeps uploaded images in BadgerDB.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

// Open opens (or creates) the image store in dir.
func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("image store path is required")
	}
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	opts.Logger = badgerLogAdapter{}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open badger db")
	}
	log.Info().Str("path", opts.Dir).Bool("inMemory", opts.InMemory).Msg("Image store opened")
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ETag is the quoted BLAKE3 digest of data.
func ETag(data []byte) string {
	sum := blake3.Sum256(data)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

func (s *Store) Put(ctx context.Context, img *images.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !images.ValidKey(img.Key) {
		return errors.Wrapf(errors.ErrInvalidRequest, "invalid image key %q", img.Key)
	}

	if img.CreatedAt.IsZero() {
		img.CreatedAt = s.now().UTC()
	}
	img.ETag = ETag(img.Data)
	img.Size = int64(len(img.Data))

	value, err := encMode.Marshal(record{
		ContentType:  img.ContentType,
		CacheControl: img.CacheControl,
		ETag:         img.ETag,
		CreatedAt:    img.CreatedAt.UnixMilli(),
		Data:         img.Data,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to encode image %s", img.Key)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+img.Key), value)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to store image %s", img.Key)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (*images.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrapf(errors.ErrNotFound, "image %s", key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image %s", key)
	}

	return &images.Image{
		Key:          key,
		ContentType:  rec.ContentType,
		CacheControl: rec.CacheControl,
		ETag:         rec.ETag,
		Size:         int64(len(rec.Data)),
		CreatedAt:    time.UnixMilli(rec.CreatedAt).UTC(),
		Data:         rec.Data,
	}, nil
}

// Delete removes key. Deleting a missing key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete image %s", key)
	}
	return nil
}

// badgerLogAdapter routes badger's logs through zerolog.
type badgerLogAdapter struct{}

func (badgerLogAdapter) Errorf(format string, args ...interface{}) {
	log.Error().Msgf("BadgerDB: "+strings.TrimSpace(format), args...)
}

func (badgerLogAdapter) Warningf(format string, args ...interface{}) {
	log.Warn().Msgf("BadgerDB: "+strings.TrimSpace(format), args...)
}

func (badgerLogAdapter) Infof(format string, args ...interface{}) {
	log.Debug().Msgf("BadgerDB: "+strings.TrimSpace(format), args...)
}

func (badgerLogAdapter) Debugf(format string, args ...interface{}) {
	log.Trace().Msgf("BadgerDB: "+strings.TrimSpace(format), args...)
}
