// Package registry provides the plugin registry for dispatching decoding
// requests to codec plugins by name.
package registry

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"geopuzzle/internal/fragments"
	"geopuzzle/internal/scoring"
)

// ErrUnknownPlugin is returned by Execute for an unregistered name.
var ErrUnknownPlugin = errors.New("unknown plugin")

// Request is what a plugin receives. State lives in the request only, so a
// plugin instance can serve concurrent calls.
type Request struct {
	Inputs Inputs
	Scorer scoring.Scorer
	Logger *zap.Logger
}

// Plugin is implemented by each codec plugin.
type Plugin interface {
	// Name returns the plugin's unique identifier.
	Name() string

	// Description is a one-line summary for listings.
	Description() string

	// Priority orders plugins in listings and scans. Lower comes first.
	Priority() int

	// Execute runs the plugin. It returns a finished envelope.
	Execute(req *Request) *Response
}

// Checker is implemented by plugins that expose their fragment extractor.
type Checker interface {
	Check(text string, opts fragments.Options) fragments.CheckResult
}

// Registry holds all registered plugins.
type Registry struct {
	mu sync.RWMutex

	byName  map[string]Plugin
	ordered []Plugin
	sorted  bool

	logger *zap.Logger
	scorer scoring.Scorer
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{
		byName: make(map[string]Plugin),
		logger: zap.NewNop(),
		scorer: scoring.Default(),
	}
}

// Global default registry.
var defaultRegistry = New()

// Default returns the global registry instance.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a plugin to the default registry.
// Called during init() in each plugin package.
func Register(p Plugin) {
	defaultRegistry.Register(p)
}

// Register adds a plugin. A later registration with the same name replaces the earlier one.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[p.Name()]; ok {
		for i, q := range r.ordered {
			if q.Name() == p.Name() {
				r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
				break
			}
		}
	}
	r.byName[p.Name()] = p
	r.ordered = append(r.ordered, p)
	r.sorted = false
}

// SetLogger sets the logger used for dispatch errors and passed to plugins.
func (r *Registry) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = l
}

// SetScorer replaces the brute-force scorer handed to plugins.
func (r *Registry) SetScorer(s scoring.Scorer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scorer = s
}

// Sort orders plugins by priority, then name. Call after registration.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}
	sort.SliceStable(r.ordered, func(i, j int) bool {
		if r.ordered[i].Priority() != r.ordered[j].Priority() {
			return r.ordered[i].Priority() < r.ordered[j].Priority()
		}
		return r.ordered[i].Name() < r.ordered[j].Name()
	})
	r.sorted = true
}

// Get looks up a plugin by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Plugins returns all registered plugins in priority order.
func (r *Registry) Plugins() []Plugin {
	r.Sort()

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// PluginCount returns the number of registered plugins.
func (r *Registry) PluginCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Execute dispatches inputs to the named plugin. A plugin panic is logged
// and converted into an error envelope. For an unknown name the error
// envelope is returned together with ErrUnknownPlugin.
func (r *Registry) Execute(name string, inputs Inputs) (*Response, error) {
	start := time.Now()

	p, ok := r.Get(name)
	if !ok {
		resp := NewResponse(name, inputs).Fail("unknown plugin %q", name)
		return resp, fmt.Errorf("%w: %s", ErrUnknownPlugin, name)
	}

	r.mu.RLock()
	req := &Request{Inputs: inputs, Scorer: r.scorer, Logger: r.logger.With(zap.String("plugin", name))}
	r.mu.RUnlock()
	if req.Inputs == nil {
		req.Inputs = Inputs{}
	}

	resp := r.safeExecute(p, req)
	resp.PluginInfo.Name = name
	resp.PluginInfo.ExecutionTimeMS = elapsedMS(start)
	return resp, nil
}

func (r *Registry) safeExecute(p Plugin, req *Request) (resp *Response) {
	defer func() {
		if rec := recover(); rec != nil {
			req.Logger.Error("plugin panicked",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			resp = NewResponse(p.Name(), req.Inputs).Fail("plugin %s failed: %v", p.Name(), rec)
		}
	}()

	resp = p.Execute(req)
	if resp == nil {
		req.Logger.Error("plugin returned no response")
		resp = NewResponse(p.Name(), req.Inputs).Fail("plugin %s returned no response", p.Name())
	}
	return resp
}

// Match is one plugin whose alphabet was found in a scanned text.
type Match struct {
	Plugin string                `json:"plugin"`
	Check  fragments.CheckResult `json:"check"`
}

// Scan runs every Checker plugin over text and returns those that matched,
// best coverage first.
func (r *Registry) Scan(text string, opts fragments.Options) []Match {
	var matches []Match
	for _, p := range r.Plugins() {
		c, ok := p.(Checker)
		if !ok {
			continue
		}
		res := r.safeCheck(c, text, opts)
		if res.IsMatch {
			matches = append(matches, Match{Plugin: p.Name(), Check: res})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Check.Score > matches[j].Check.Score
	})
	return matches
}

func (r *Registry) safeCheck(c Checker, text string, opts fragments.Options) (res fragments.CheckResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.mu.RLock()
			r.logger.Error("plugin check panicked", zap.Any("panic", rec))
			r.mu.RUnlock()
			res = fragments.NoMatch()
		}
	}()
	return c.Check(text, opts)
}
