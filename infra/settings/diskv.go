// Package settings provides persistent backends for the settings store.
package settings

import (
	"context"
	"errors"
	"io/fs"

	"github.com/peterbourgon/diskv/v3"

	coresettings "github.com/bsb-logistics/ganttboard/core/settings"
)

// DiskvStore keeps one file per key under a base directory.
type DiskvStore struct {
	d *diskv.Diskv
}

// NewDiskvStore opens a store rooted at dir.
func NewDiskvStore(dir string) *DiskvStore {
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:     dir,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 64 * 1024,
	})}
}

func (s *DiskvStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := s.d.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, coresettings.ErrNotFound
	}
	return b, err
}

func (s *DiskvStore) Put(_ context.Context, key string, value []byte) error {
	return s.d.Write(key, value)
}
