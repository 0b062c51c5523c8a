package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"choromap/internal/geom"
	xlog "choromap/internal/log"
)

// DefaultTopology names the topology from the top-level config entry.
const DefaultTopology = "default"

var ErrUnknownTopology = errors.New("unknown topology")

const reloadDebounce = 200 * time.Millisecond

// Store loads named topologies lazily and reloads local files when they
// change on disk.
type Store struct {
	mu       sync.RWMutex
	sources  map[string]string
	loaded   map[string]geom.Boundaries
	onChange []func(name string)
	log      zerolog.Logger
}

// NewStore maps topology names to files or URLs.
func NewStore(sources map[string]string) *Store {
	s := &Store{
		sources: map[string]string{},
		loaded:  map[string]geom.Boundaries{},
		log:     xlog.WithComponent("topology"),
	}
	for name, src := range sources {
		if src != "" {
			s.sources[name] = src
		}
	}
	return s
}

// Put registers an already decoded topology.
func (s *Store) Put(name string, b geom.Boundaries) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded[name] = b
}

// Names lists every known topology.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]bool{}
	for n := range s.sources {
		seen[n] = true
	}
	for n := range s.loaded {
		seen[n] = true
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Has reports whether name is known.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sources[name]
	if !ok {
		_, ok = s.loaded[name]
	}
	return ok
}

// Get returns the named topology, loading it on first use.
func (s *Store) Get(ctx context.Context, name string) (geom.Boundaries, error) {
	s.mu.RLock()
	b, ok := s.loaded[name]
	src, known := s.sources[name]
	s.mu.RUnlock()
	if ok {
		return b, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTopology, name)
	}
	return s.load(ctx, name, src)
}

// Reload decodes the named source again and notifies listeners.
func (s *Store) Reload(ctx context.Context, name string) error {
	s.mu.RLock()
	src, known := s.sources[name]
	s.mu.RUnlock()
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownTopology, name)
	}
	if _, err := s.load(ctx, name, src); err != nil {
		topologyReloads.WithLabelValues("error").Inc()
		return err
	}
	topologyReloads.WithLabelValues("ok").Inc()
	s.mu.RLock()
	listeners := append([]func(string){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(name)
	}
	return nil
}

// OnChange registers a callback run after every successful reload.
func (s *Store) OnChange(fn func(name string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Store) load(ctx context.Context, name, src string) (geom.Boundaries, error) {
	start := time.Now()
	b, err := geom.LoadBoundaries(ctx, src)
	if err != nil {
		s.log.Error().Err(err).Str(xlog.FieldPath, src).Msg("topology load failed")
		return nil, fmt.Errorf("load topology %q: %w", name, err)
	}
	s.mu.Lock()
	s.loaded[name] = b
	s.mu.Unlock()
	s.log.Info().
		Str("topology", name).
		Str(xlog.FieldPath, src).
		Dur(xlog.FieldDuration, time.Since(start)).
		Msg("topology loaded")
	return b, nil
}

// Watch reloads local topology files when they are written or replaced. It
// watches the parent directories so that editors that rename over the file
// are noticed. The watcher stops when ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	byPath := map[string][]string{}
	s.mu.RLock()
	for name, src := range s.sources {
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			continue
		}
		abs, err := filepath.Abs(src)
		if err != nil {
			continue
		}
		byPath[abs] = append(byPath[abs], name)
	}
	s.mu.RUnlock()
	if len(byPath) == 0 {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dirs := map[string]bool{}
	for p := range byPath {
		dir := filepath.Dir(p)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	s.log.Info().Int(xlog.FieldCount, len(byPath)).Msg("watching topology files")
	go s.watchLoop(ctx, watcher, byPath)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, byPath map[string][]string) {
	defer watcher.Close()
	timers := map[string]*time.Timer{}
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			names := byPath[filepath.Clean(event.Name)]
			if len(names) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if t := timers[path]; t != nil {
				t.Stop()
			}
			timers[path] = time.AfterFunc(reloadDebounce, func() {
				for _, name := range names {
					if err := s.Reload(ctx, name); err != nil {
						s.log.Error().Err(err).Str("topology", name).Msg("automatic topology reload failed")
					}
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Error().Err(err).Msg("topology watcher error")
		}
	}
}
