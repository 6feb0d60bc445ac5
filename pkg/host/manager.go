package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/config"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/discovery"
	"github.com/jvano/azure-webjobs-sdk-script/pkg/host/logging"
)

// DefaultDebounceInterval is how long the manager waits after the last
// relevant file change before restarting the generation. Deployments
// touch many files in a burst; one restart should cover the burst.
const DefaultDebounceInterval = 500 * time.Millisecond

// Manager owns the host's reload loop: it builds a Host, runs it for
// one configuration generation and replaces it when the script root
// changes. The sentinel watch feeding the debug tracker stays active
// even when file watching is disabled in the configuration.
type Manager struct {
	opts     *Options
	debounce time.Duration

	mu      sync.RWMutex
	current *Host
}

// NewManager creates a manager over the given host options.
func NewManager(opts *Options) *Manager {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Manager{opts: opts, debounce: DefaultDebounceInterval}
}

// WithDebounce sets the restart debounce interval.
func (m *Manager) WithDebounce(interval time.Duration) *Manager {
	m.debounce = interval
	return m
}

// Host returns the currently running generation, or nil between
// generations.
func (m *Manager) Host() *Host {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Run builds and runs host generations until ctx is cancelled or a
// generation fails to initialize. Configuration failures are fatal and
// end the loop; file changes only ever restart it.
func (m *Manager) Run(ctx context.Context) error {
	for {
		h := New(m.opts)
		if err := h.Initialize(ctx); err != nil {
			return err
		}
		m.setCurrent(h)

		restart, err := m.runGeneration(ctx, h)

		m.setCurrent(nil)
		if closeErr := h.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil || !restart {
			return err
		}
		if m.opts.Metrics != nil {
			m.opts.Metrics.Count(MetricHostRestarted)
		}
	}
}

func (m *Manager) setCurrent(h *Host) {
	m.mu.Lock()
	m.current = h
	m.mu.Unlock()
}

// runGeneration watches the filesystem for the lifetime of one
// generation. It returns restart=true when a relevant change was
// observed and the debounce window has drained, and restart=false when
// ctx ended the run.
func (m *Manager) runGeneration(ctx context.Context, h *Host) (bool, error) {
	log := h.factory.CreateLogger(CategoryManager)
	ctx = h.ScopeContext(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return false, fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// The sentinel directory is watched unconditionally so another
	// process touching the sentinel flips this host into debug mode.
	sentinelDir := filepath.Dir(h.tracker.SentinelPath())
	if err := os.MkdirAll(sentinelDir, 0755); err == nil {
		if err := watcher.Add(sentinelDir); err != nil {
			log.Warn(ctx, "Unable to watch the debug sentinel directory", zap.Error(err))
		}
	} else {
		log.Warn(ctx, "Unable to create the debug sentinel directory", zap.Error(err))
	}

	cfg := h.Configuration()
	if cfg.FileWatchingEnabled {
		m.addScriptWatches(ctx, watcher, h, log)
	}

	var debounceT *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return false, nil

		case event, ok := <-watcher.Events:
			if !ok {
				return false, nil
			}
			if event.Name == h.tracker.SentinelPath() {
				// Touches show up as Create, Write or Chmod depending
				// on whether the file existed.
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Chmod) != 0 {
					h.tracker.HandleSentinelChange()
					log.Debug(ctx, "Debug sentinel changed, entering debug mode")
				}
				continue
			}
			if !cfg.FileWatchingEnabled || !relevantChange(h, event) {
				continue
			}
			log.Info(ctx, fmt.Sprintf("File change detected ('%s'), host restart scheduled", event.Name))
			if debounceT == nil {
				debounceT = time.NewTimer(m.debounce)
				debounceC = debounceT.C
			} else {
				debounceT.Reset(m.debounce)
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return false, nil
			}
			log.Warn(ctx, "File watcher error", zap.Error(werr))

		case <-debounceC:
			return true, nil
		}
	}
}

// addScriptWatches registers the script root, each function directory
// and each configured watch directory. fsnotify watches are shallow, so
// directories are added individually.
func (m *Manager) addScriptWatches(ctx context.Context, watcher *fsnotify.Watcher, h *Host, log *logging.Logger) {
	root := h.opts.ScriptRoot
	if err := watcher.Add(root); err != nil {
		log.Warn(ctx, "Unable to watch the script root", zap.Error(err))
		return
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		watcher.Add(filepath.Join(root, entry.Name()))
	}
	for _, dir := range h.Configuration().WatchDirectories {
		path := filepath.Join(root, dir)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			watcher.Add(path)
		}
	}
}

// relevantChange decides whether a filesystem event invalidates the
// current generation: the host document, any function document, the
// appearance or disappearance of a root entry, or anything inside a
// configured watch directory.
func relevantChange(h *Host, event fsnotify.Event) bool {
	rel, err := filepath.Rel(h.opts.ScriptRoot, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}

	base := filepath.Base(rel)
	if strings.EqualFold(base, config.HostFileName) || strings.EqualFold(base, discovery.FunctionFileName) {
		return true
	}

	segments := strings.Split(filepath.ToSlash(rel), "/")
	if len(segments) == 1 {
		return event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
	}
	for _, dir := range h.Configuration().WatchDirectories {
		if strings.EqualFold(segments[0], dir) {
			return true
		}
	}
	return false
}
