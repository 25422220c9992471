package config

import (
	"path/filepath"
	"sync/atomic"

	"emperror.dev/errors"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Holder keeps the current config and swaps it on reload.
type Holder struct {
	path      string
	overrides func(*Config)
	current   atomic.Pointer[Config]
}

type HolderOption func(*Holder)

// WithOverrides applies fn to every config the holder loads, including
// reloads, before it is validated and stored.
func WithOverrides(fn func(*Config)) HolderOption {
	return func(h *Holder) {
		h.overrides = fn
	}
}

func NewHolder(path string, opts ...HolderOption) (*Holder, error) {
	h := &Holder{path: path}
	for _, opt := range opts {
		opt(h)
	}
	if _, err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// StaticHolder wraps an already loaded config that is never reloaded.
func StaticHolder(cfg *Config) *Holder {
	h := &Holder{}
	h.current.Store(cfg)
	return h
}

func (h *Holder) Current() *Config {
	return h.current.Load()
}

func (h *Holder) Path() string {
	return h.path
}

// Reload reads the file again and replaces the current config if it is valid.
func (h *Holder) Reload() (*Config, error) {
	cfg, err := Load(h.path)
	if err != nil {
		return nil, err
	}
	if h.overrides != nil {
		h.overrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	h.current.Store(cfg)
	return cfg, nil
}

// Watch reloads the config whenever its directory changes and calls onChange
// with the new value. It blocks until the watcher fails or stop is closed.
func (h *Holder) Watch(stop <-chan struct{}, onChange func(*Config)) error {
	if h.path == "" {
		return errors.New("no config file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		return err
	}
	target := filepath.Clean(h.path)
	for {
		select {
		case <-stop:
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("could not retrieve event")
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			log.WithField("file", h.path).Info("reloading config file")
			cfg, err := h.Reload()
			if err != nil {
				log.Errorf("failed to reload config: %v", err)
				continue
			}
			if onChange != nil {
				onChange(cfg)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("could not retrieve error")
			}
			return err
		}
	}
}
