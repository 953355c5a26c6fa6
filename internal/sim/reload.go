package sim

import (
	"github.com/dshills/keypipe/internal/config"
	"github.com/dshills/keypipe/internal/config/watcher"
	"github.com/dshills/keypipe/internal/logging"
)

// ReloadOptions configures profile reloading.
type ReloadOptions struct {
	// Prepare adjusts a freshly loaded profile, e.g. to apply environment
	// overrides.
	Prepare func(p *config.Profile) error

	// Done is called after every reload attempt with its error.
	Done func(err error)

	Log *logging.Logger
}

// Reloader rebuilds a simulator's profile when its file changes.
type Reloader struct {
	w    *watcher.Watcher
	sim  *Sim
	path string
	opts ReloadOptions
}

// WatchProfile reloads the profile at path into s whenever the file
// changes. The caller must Close the returned Reloader.
func WatchProfile(s *Sim, path string, opts ReloadOptions) (*Reloader, error) {
	if opts.Log == nil {
		opts.Log = logging.Nop()
	}
	w, err := watcher.New(watcher.WithLogger(opts.Log))
	if err != nil {
		return nil, err
	}
	r := &Reloader{w: w, sim: s, path: path, opts: opts}
	w.OnChange(r.onChange)
	if err := w.Watch(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reloader) onChange(ev watcher.Event) {
	if ev.Op == watcher.OpRemove {
		return
	}
	err := r.Reload()
	if err != nil {
		r.opts.Log.WithError(err).Warn("reload of %s failed", r.path)
	}
	if r.opts.Done != nil {
		r.opts.Done(err)
	}
}

// Reload loads and applies the profile file now.
func (r *Reloader) Reload() error {
	p, err := config.Load(r.path)
	if err != nil {
		return err
	}
	if r.opts.Prepare != nil {
		if err := r.opts.Prepare(p); err != nil {
			return err
		}
	}
	return r.sim.Load(p)
}

// Close stops watching.
func (r *Reloader) Close() error {
	return r.w.Close()
}
