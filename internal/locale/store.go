package locale

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Store holds the active pack. Readers take one snapshot per extraction, so a
// reload never changes tables halfway through a call.
type Store struct {
	logger    *slog.Logger
	current   atomic.Pointer[Pack]
	listeners []func(*Pack)
	mu        sync.Mutex
}

// NewStore creates a store serving pack.
func NewStore(pack *Pack, logger *slog.Logger) *Store {
	s := &Store{logger: common.OrDefault(logger)}
	s.current.Store(pack)
	return s
}

// Pack returns the current snapshot.
func (s *Store) Pack() *Pack {
	return s.current.Load()
}

// Swap replaces the active pack and notifies listeners.
func (s *Store) Swap(pack *Pack) {
	s.current.Store(pack)

	s.mu.Lock()
	listeners := append([]func(*Pack){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(pack)
	}
}

// OnSwap registers fn to run after every successful swap.
func (s *Store) OnSwap(fn func(*Pack)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Reload loads path and swaps it in. The current pack stays active on error.
func (s *Store) Reload(path string) error {
	pack, err := Load(path)
	if err != nil {
		metrics.RecordLocaleReload(false)
		return err
	}
	s.Swap(pack)
	metrics.RecordLocaleReload(true)
	s.logger.Info("Locale pack loaded", "path", path, "name", pack.Name, "categories", len(pack.Categories))
	return nil
}

// Watch loads path and keeps reloading it whenever the file changes.
// Invalid edits are logged and ignored.
func (s *Store) Watch(path string) error {
	if err := s.Reload(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to watch locale pack %s: %w", path, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := s.Reload(e.Name); err != nil {
			s.logger.Warn("Ignoring invalid locale pack change", "path", e.Name, "error", err)
		}
	})
	v.WatchConfig()

	return nil
}
