// Package fs provides a dao.Service persisting JSON documents through afs,
// so records can live on a local disk or any afs-supported storage URL.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/flowcore/internal/xjson"
	"github.com/viant/flowcore/service/dao"
	"github.com/viant/flowcore/service/dao/criteria"
)

// Store implements a filesystem-based storage of *T, one file per record.
type Store[T any] struct {
	baseURL     string
	fs          afs.Service
	keySelector func(*T) string
	mu          sync.RWMutex
}

// Save persists a record.
func (s *Store[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	id := s.keySelector(v)
	if id == "" {
		return dao.ErrInvalidID
	}
	data, err := xjson.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %v: %w", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.recordURL(id)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", location, err)
	}
	return nil
}

// Load retrieves a record.
func (s *Store[T]) Load(ctx context.Context, id string) (*T, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := s.recordURL(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", dao.ErrNotFound, id)
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	ret := new(T)
	if err := xjson.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", location, err)
	}
	return ret, nil
}

// Delete removes a record.
func (s *Store[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.recordURL(id)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", location, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", dao.ErrNotFound, id)
	}
	return s.fs.Delete(ctx, location)
}

// List returns records matching parameters. Unreadable files are skipped and
// reported in the returned error together with the readable records.
func (s *Store[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.baseURL, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.baseURL, err)
	}
	var ret []*T
	var errs []error
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to read %s: %w", object.URL(), err))
			continue
		}
		record := new(T)
		if err := xjson.Unmarshal(data, record); err != nil {
			errs = append(errs, fmt.Errorf("failed to unmarshal %s: %w", object.URL(), err))
			continue
		}
		if !criteria.Match(record, parameters) {
			continue
		}
		ret = append(ret, record)
	}
	return ret, errors.Join(errs...)
}

func (s *Store[T]) recordURL(id string) string {
	return url.Join(s.baseURL, path.Base(id)+".json")
}

// New creates a store rooted at baseURL, creating the location when missing.
func New[T any](ctx context.Context, baseURL string, keySelector func(*T) string) (*Store[T], error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	fs := afs.New()
	baseURL = url.Normalize(baseURL, file.Scheme)
	exists, _ := fs.Exists(ctx, baseURL)
	if !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", baseURL, err)
		}
	}
	return &Store[T]{baseURL: baseURL, fs: fs, keySelector: keySelector}, nil
}
