// Package modloader implements the Module Loader (spec §4.6): resolving
// application code by absolute/local or SUN (system universal namespace)
// path, loading from the local filesystem or from a web object's
// LOCAL.text endpoint, caching by normalized path, and detecting circular
// dependencies via a per-process dependency stack. Grounded on
// theRebelliousNerd-codenerd's yaegi_executor.go (interpreting Go source
// at runtime instead of compiling it) for the shared evaluation context,
// and on andyballingall-json-schema-manager / codenerd's use of
// fsnotify.Watcher for local cache invalidation.
package modloader

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/schemat-io/core/internal/schematerr"
)

// moduleState tracks where a cache entry sits relative to a single
// Load call's dependency stack (spec §4.6 "linking" state for circular
// detection).
type moduleState int

const (
	stateLinking moduleState = iota
	stateLinked
)

// module is one cached, loaded unit of source.
type module struct {
	path  string
	state moduleState
	value interface{} // the interpreter's view of the module's exported symbols
}

// TextFetcher obtains the raw source for a SUN path by invoking the
// LOCAL.text endpoint on the web object at that path (spec §4.6 "the text
// of the module is obtained by invoking the LOCAL.text endpoint").
type TextFetcher func(ctx context.Context, sunPath string) (source string, err error)

// Loader resolves and caches application code, local or SUN (spec §4.6).
type Loader struct {
	root    string // configured local filesystem root
	fetch   TextFetcher
	interp  *interp.Interpreter
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	cache   map[string]*module
	stack   []string // per-process dependency stack, path order
	onStack map[string]bool
}

// New builds a Loader rooted at localRoot, obtaining SUN module source via
// fetch. A single process-wide yaegi interpreter is shared across every
// Eval call (SPEC_FULL §4.6 "a single process-wide *interp.Interpreter").
func New(localRoot string, fetch TextFetcher) (*Loader, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, schematerr.Internal("modloader: loading stdlib symbols: %v", err)
	}
	l := &Loader{
		root:    localRoot,
		fetch:   fetch,
		interp:  i,
		cache:   map[string]*module{},
		onStack: map[string]bool{},
	}
	w, err := fsnotify.NewWatcher()
	if err == nil {
		l.watcher = w
		if localRoot != "" {
			_ = w.Add(localRoot)
		}
		go l.watchLoop()
	}
	return l, nil
}

// SetFetcher installs the SUN TextFetcher after construction, for callers
// that must build the Module Loader before the container Tree and
// Dispatcher it depends on to serve LOCAL.text exist yet.
func (l *Loader) SetFetcher(fetch TextFetcher) {
	l.mu.Lock()
	l.fetch = fetch
	l.mu.Unlock()
}

// Close releases the filesystem watcher, if any.
func (l *Loader) Close() error {
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

func (l *Loader) watchLoop() {
	for {
		select {
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				l.invalidateLocal(ev.Name)
			}
		case _, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (l *Loader) invalidateLocal(changedPath string) {
	rel, err := filepath.Rel(l.root, changedPath)
	if err != nil {
		return
	}
	norm, err := Normalize(rel)
	if err != nil {
		return
	}
	l.mu.Lock()
	delete(l.cache, norm)
	l.mu.Unlock()
}

// sunPrefix marks an import string as an absolute SUN path resolved
// through the container tree, as opposed to one resolved relative to the
// loader's local filesystem root. Both forms are written as plain import
// strings; this core's convention is that a SUN path is written with a
// leading "sun:" the way a Go import path carries its module prefix.
const sunPrefix = "sun:"

func isSUN(p string) bool { return strings.HasPrefix(p, sunPrefix) }

// Normalize collapses "/./" and resolves "/../" segments, rejecting any
// escape above the root (spec §4.6 "Normalization"). The SUN/local
// distinction is preserved in the returned string so the cache cannot
// conflate a SUN path with a same-named local one.
func Normalize(p string) (string, error) {
	prefix, rest := "", p
	if isSUN(p) {
		prefix, rest = sunPrefix, strings.TrimPrefix(p, sunPrefix)
	}
	// Clean relative to the root so a leading ".." survives and can be
	// detected, instead of being silently dropped by a rooted Clean.
	rel := path.Clean(strings.TrimLeft(rest, "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", schematerr.Internal("modloader: path %q escapes its root", p)
	}
	return prefix + path.Clean("/"+rel), nil
}

// Load resolves path (local or SUN, see isSUN), pushing it onto the
// per-process dependency stack for the duration of this call so a cycle
// can be detected and reported with the full chain (spec §4.6, §8
// invariant 10). referrer is the path of the module doing the importing,
// "" for a top-level load.
func (l *Loader) Load(ctx context.Context, modPath, referrer string) (interface{}, error) {
	norm, err := Normalize(modPath)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.onStack[norm] {
		chain := append(append([]string{}, l.stack...), norm)
		l.mu.Unlock()
		return nil, schematerr.CircularDependency(chain)
	}
	if m, ok := l.cache[norm]; ok && m.state == stateLinked {
		l.mu.Unlock()
		return m.value, nil
	}
	l.stack = append(l.stack, norm)
	l.onStack[norm] = true
	l.cache[norm] = &module{path: norm, state: stateLinking}
	l.mu.Unlock()

	value, err := l.loadSource(ctx, norm)

	l.mu.Lock()
	l.stack = l.stack[:len(l.stack)-1]
	delete(l.onStack, norm)
	if err != nil {
		delete(l.cache, norm) // don't poison the cache with a partial module
	} else {
		l.cache[norm] = &module{path: norm, state: stateLinked, value: value}
	}
	l.mu.Unlock()

	return value, err
}

func (l *Loader) loadSource(ctx context.Context, norm string) (interface{}, error) {
	var source string
	var err error
	if isSUN(norm) {
		l.mu.Lock()
		fetch := l.fetch
		l.mu.Unlock()
		if fetch == nil {
			return nil, schematerr.Internal("modloader: no SUN text fetcher configured for %q", norm)
		}
		source, err = fetch(ctx, strings.TrimPrefix(norm, sunPrefix))
	} else {
		source, err = l.readLocal(norm)
	}
	if err != nil {
		return nil, err
	}
	v, evalErr := l.interp.Eval(source)
	if evalErr != nil {
		return nil, schematerr.Internal("modloader: evaluating %q: %v", norm, evalErr)
	}
	return v.Interface(), nil
}

func (l *Loader) readLocal(norm string) (string, error) {
	full := path.Join(l.root, norm)
	data, err := readFile(full)
	if err != nil {
		return "", schematerr.Internal("modloader: reading %q: %v", full, err)
	}
	return string(data), nil
}

// readFile is a thin indirection over os.ReadFile so tests can swap the
// filesystem without changing Loader's exported surface.
var readFile = os.ReadFile
