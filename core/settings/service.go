package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/bsb-logistics/ganttboard/core/logger"
)

// Service owns the current settings and persists them through a Store.
type Service struct {
	store Store
	log   logger.Logger

	mu  sync.RWMutex
	cur Settings
}

// NewService returns a service holding the defaults until Load is called.
func NewService(store Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{store: store, log: log, cur: Defaults()}
}

// Current returns the settings in effect.
func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Load overlays the persisted document onto the defaults. Keys missing from
// the document keep their default. A corrupt or invalid document is logged
// and ignored; only a failing store is returned as an error.
func (s *Service) Load(ctx context.Context) (Settings, error) {
	next := Defaults()
	raw, err := s.store.Get(ctx, Key)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return s.Current(), fmt.Errorf("load settings: %w", err)
	default:
		candidate := Defaults()
		if err := json.Unmarshal(raw, &candidate); err != nil {
			s.log.Warnf("ignoring corrupt settings: %v", err)
		} else if err := candidate.Validate(); err != nil {
			s.log.Warnf("ignoring invalid settings: %v", err)
		} else {
			next = candidate
		}
	}
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return next, nil
}

// Save validates and persists st, then makes it current.
func (s *Service) Save(ctx context.Context, st Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, Key, b); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.mu.Lock()
	s.cur = st
	s.mu.Unlock()
	return nil
}

// Update applies fn to a copy of the current settings and saves the result.
func (s *Service) Update(ctx context.Context, fn func(*Settings)) (Settings, error) {
	st := s.Current()
	fn(&st)
	if err := s.Save(ctx, st); err != nil {
		return s.Current(), err
	}
	return st, nil
}
