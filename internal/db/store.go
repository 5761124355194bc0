package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"devsquare/internal/apperrors"
	"devsquare/internal/config"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

// ErrCollectionNotFound is returned by a Backend when a collection has never been written.
var ErrCollectionNotFound = errors.New("collection not found")

// Backend persists whole collections as opaque JSON documents.
type Backend interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// Store serializes access per collection and keeps recently read raw
// collections in an LRU so repeated reads skip the backend.
type Store struct {
	backend Backend
	log     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	cache *lru.Cache[string, []byte]
}

// NewStore wraps backend. cacheSize <= 0 disables the read cache.
func NewStore(backend Backend, cacheSize int, log zerolog.Logger) (*Store, error) {
	s := &Store{
		backend: backend,
		log:     log.With().Str("component", "store").Logger(),
		locks:   make(map[string]*sync.Mutex),
	}
	if cacheSize > 0 {
		c, err := lru.New[string, []byte](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create store cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// Open builds the backend selected by cfg.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		backend, err = NewPostgresBackend(cfg.Store.DSN)
	case config.DriverMongo:
		backend, err = NewMongoBackend(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	default:
		backend, err = NewFileBackend(cfg.Store.Dir)
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("record store ready")
	return NewStore(backend, cfg.Store.CacheSize, log)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) lock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// readRaw returns the stored bytes, or nil when the collection does not exist.
func (s *Store) readRaw(ctx context.Context, name string) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(name); ok {
			return data, nil
		}
	}
	data, err := s.backend.Read(ctx, name)
	if errors.Is(err, ErrCollectionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err, fmt.Sprintf("failed to read %s", name))
	}
	if s.cache != nil {
		s.cache.Add(name, data)
	}
	return data, nil
}

func (s *Store) writeRaw(ctx context.Context, name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperrors.NewInternalError(err, fmt.Sprintf("failed to encode %s", name))
	}
	if err := s.backend.Write(ctx, name, data); err != nil {
		if s.cache != nil {
			s.cache.Remove(name)
		}
		s.log.Error().Err(err).Str("collection", name).Msg("write failed")
		return apperrors.NewInternalError(err, fmt.Sprintf("failed to save %s", name))
	}
	if s.cache != nil {
		s.cache.Add(name, data)
	}
	return nil
}

// decode fills v from data. Missing and corrupt content leave v at its
// empty default; the bool reports whether the collection existed at all.
func (s *Store) decode(name string, data []byte, v interface{}) (bool, error) {
	if data == nil {
		return false, nil
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true, nil
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		s.log.Warn().Err(err).Str("collection", name).Msg("corrupt collection, using empty default")
		if s.cache != nil {
			s.cache.Remove(name)
		}
		return true, errCorrupt
	}
	return true, nil
}

var errCorrupt = errors.New("corrupt collection")
