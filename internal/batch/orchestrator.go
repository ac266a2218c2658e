// Package batch owns the lifecycle of uploaded images: it creates items,
// dispatches one translation attempt per item concurrently, and records
// their outcome.
package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/imgtranslate/internal/config"
	"github.com/lehigh-university-libraries/imgtranslate/internal/metrics"
	"github.com/lehigh-university-libraries/imgtranslate/internal/models"
	"github.com/lehigh-university-libraries/imgtranslate/internal/providers"
	"github.com/lehigh-university-libraries/imgtranslate/internal/storage"
	"github.com/lehigh-university-libraries/imgtranslate/internal/translation"
)

var (
	ErrNotFound     = errors.New("item not found")
	ErrInFlight     = errors.New("item is already being analyzed")
	ErrNotRetryable = errors.New("item has already been translated")
	ErrClosed       = errors.New("orchestrator is closed")
)

// File is an accepted upload
type File struct {
	Filename string
	Image    models.Image
}

// Options override the configured provider and language hint for a batch
type Options struct {
	Provider     string
	LanguageHint string
}

// AddResult lists the new item ids in upload order
type AddResult struct {
	IDs                 []string `json:"ids"`
	CredentialsRequired bool     `json:"credentials_required"`
}

// Translator is the strategy the orchestrator dispatches to
type Translator interface {
	Validate(req translation.Request) error
	TranslateItem(ctx context.Context, req translation.Request) (*models.TranslationResult, error)
}

// Builder derives a Translator from a configuration
type Builder func(cfg config.Config) Translator

type mutation struct {
	apply func(*storage.ItemStore)
	done  chan struct{}
}

// Orchestrator serializes every item write through a single goroutine.
// Readers take snapshots from the store concurrently.
type Orchestrator struct {
	store     *storage.ItemStore
	mutations chan mutation
	quit      chan struct{}
	closeOnce sync.Once

	mu         sync.RWMutex
	cfg        config.Config
	translator Translator
	build      Builder

	inflight sync.WaitGroup
	now      func() time.Time
}

// New starts an orchestrator for cfg. build is called again on every SetConfig.
func New(cfg config.Config, build Builder) *Orchestrator {
	o := &Orchestrator{
		store:      storage.New(),
		mutations:  make(chan mutation),
		quit:       make(chan struct{}),
		cfg:        cfg,
		translator: build(cfg),
		build:      build,
		now:        time.Now,
	}
	go o.loop()
	return o
}

func (o *Orchestrator) loop() {
	for {
		select {
		case m := <-o.mutations:
			m.apply(o.store)
			close(m.done)
		case <-o.quit:
			return
		}
	}
}

// mutate applies fn on the mutation goroutine and waits for it. It reports
// false when the orchestrator is closed.
func (o *Orchestrator) mutate(fn func(*storage.ItemStore)) bool {
	m := mutation{apply: fn, done: make(chan struct{})}
	select {
	case o.mutations <- m:
	case <-o.quit:
		return false
	}
	<-m.done
	return true
}

func (o *Orchestrator) current() (config.Config, Translator) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cfg, o.translator
}

// Config returns the configuration new attempts will use
func (o *Orchestrator) Config() config.Config {
	cfg, _ := o.current()
	return cfg
}

// SetConfig replaces the configuration and rebuilds the provider clients.
// Attempts already running keep the configuration they started with.
func (o *Orchestrator) SetConfig(cfg config.Config) {
	translator := o.build(cfg)
	o.mu.Lock()
	o.cfg = cfg
	o.translator = translator
	o.mu.Unlock()
	slog.Info("Configuration updated", "config", cfg)
}

// Add creates an idle item per file, then validates credentials and starts
// an attempt for each one. Items with missing credentials go straight to
// error without any network call.
func (o *Orchestrator) Add(files []File, opts Options) (AddResult, error) {
	cfg, translator := o.current()

	provider := opts.Provider
	if provider == "" {
		provider = cfg.Provider
	}
	hint := opts.LanguageHint
	if hint == "" {
		hint = cfg.LanguageHint
	}
	hint = translation.NormalizeHint(hint)

	now := o.now()
	items := make([]models.BatchItem, 0, len(files))
	result := AddResult{IDs: make([]string, 0, len(files))}
	for _, f := range files {
		item := models.BatchItem{
			ID:           uuid.NewString(),
			Filename:     f.Filename,
			Image:        f.Image,
			Status:       models.StatusIdle,
			Provider:     provider,
			LanguageHint: hint,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		items = append(items, item)
		result.IDs = append(result.IDs, item.ID)
	}

	if !o.mutate(func(s *storage.ItemStore) {
		for _, item := range items {
			s.Set(item)
		}
	}) {
		return AddResult{}, ErrClosed
	}

	for _, item := range items {
		err := o.dispatch(item.ID, cfg, translator)
		if providers.KindOf(err) == providers.KindMissingCredential {
			result.CredentialsRequired = true
		}
	}

	slog.Info("Added batch", "items", len(items), "provider", provider, "language_hint", hint, "credentials_required", result.CredentialsRequired)
	return result, nil
}

// Retry starts a new attempt for an idle or failed item. It returns
// ErrInFlight while the item is analyzing and ErrNotRetryable once it
// has succeeded.
func (o *Orchestrator) Retry(id string) error {
	cfg, translator := o.current()
	return o.dispatch(id, cfg, translator)
}

// dispatch moves the item to analyzing and starts its attempt, or records a
// pre-flight failure on the item.
func (o *Orchestrator) dispatch(id string, cfg config.Config, translator Translator) error {
	creds := cfg.Credentials()

	var started models.BatchItem
	var dispatchErr error
	if !o.mutate(func(s *storage.ItemStore) {
		item, exists := s.Get(id)
		if !exists {
			dispatchErr = ErrNotFound
			return
		}
		switch item.Status {
		case models.StatusAnalyzing:
			dispatchErr = ErrInFlight
			return
		case models.StatusSuccess:
			dispatchErr = ErrNotRetryable
			return
		}

		item.Result = nil
		item.UpdatedAt = o.now()
		req := translation.Request{Provider: item.Provider, LanguageHint: item.LanguageHint, Credentials: creds}
		if err := translator.Validate(req); err != nil {
			item.Status = models.StatusError
			item.Error = err.Error()
			item.CredentialsRequired = providers.KindOf(err) == providers.KindMissingCredential
			s.Set(item)
			dispatchErr = err
			return
		}

		item.Status = models.StatusAnalyzing
		item.Error = ""
		item.CredentialsRequired = false
		item.Attempt++
		s.Set(item)
		started = item
	}) {
		return ErrClosed
	}

	if dispatchErr != nil {
		if !errors.Is(dispatchErr, ErrNotFound) && !errors.Is(dispatchErr, ErrInFlight) && !errors.Is(dispatchErr, ErrNotRetryable) {
			slog.Warn("Item failed pre-flight validation", "id", id, "err", dispatchErr)
			metrics.ItemsCompletedTotal.WithLabelValues(string(models.StatusError)).Inc()
		}
		return dispatchErr
	}

	o.inflight.Add(1)
	metrics.ItemsInFlight.Inc()
	go o.run(started, translator, creds)
	return nil
}

func (o *Orchestrator) run(item models.BatchItem, translator Translator, creds models.Credentials) {
	defer o.inflight.Done()
	defer metrics.ItemsInFlight.Dec()

	start := time.Now()
	result, err := translator.TranslateItem(context.Background(), translation.Request{
		Image:        item.Image,
		LanguageHint: item.LanguageHint,
		Provider:     item.Provider,
		Credentials:  creds,
	})
	if err != nil {
		slog.Error("Translation failed", "id", item.ID, "filename", item.Filename, "attempt", item.Attempt, "kind", providers.KindOf(err), "err", err)
	} else {
		slog.Info("Translation finished", "id", item.ID, "filename", item.Filename, "attempt", item.Attempt, "duration", time.Since(start))
	}

	o.complete(item.ID, item.Attempt, result, err)
}

// complete records the outcome of an attempt unless the item was removed or
// has moved on to a newer attempt.
func (o *Orchestrator) complete(id string, attempt int, result *models.TranslationResult, err error) {
	o.mutate(func(s *storage.ItemStore) {
		item, exists := s.Get(id)
		if !exists || item.Attempt != attempt || item.Status != models.StatusAnalyzing {
			slog.Debug("Discarding stale completion", "id", id, "attempt", attempt)
			metrics.StaleCompletionsTotal.Inc()
			return
		}

		item.UpdatedAt = o.now()
		if err != nil {
			item.Status = models.StatusError
			item.Error = err.Error()
			item.Result = nil
			item.CredentialsRequired = providers.KindOf(err) == providers.KindMissingCredential
		} else {
			item.Status = models.StatusSuccess
			item.Result = result
			item.Error = ""
		}
		s.Set(item)
		metrics.ItemsCompletedTotal.WithLabelValues(string(item.Status)).Inc()
	})
}

// Remove deletes an item. An attempt in flight keeps running and its
// result is dropped.
func (o *Orchestrator) Remove(id string) error {
	var removed bool
	if !o.mutate(func(s *storage.ItemStore) {
		removed = s.Delete(id)
	}) {
		return ErrClosed
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// Clear deletes every item and returns how many were removed
func (o *Orchestrator) Clear() int {
	var n int
	o.mutate(func(s *storage.ItemStore) {
		n = s.Clear()
	})
	return n
}

// Items returns a snapshot of all items in upload order
func (o *Orchestrator) Items() []models.BatchItem {
	return o.store.GetAll()
}

// Item returns a snapshot of one item
func (o *Orchestrator) Item(id string) (models.BatchItem, bool) {
	return o.store.Get(id)
}

// Wait blocks until no attempt is in flight or ctx is done. It is meant
// for callers that stop adding work before waiting, like the CLI.
func (o *Orchestrator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the mutation loop. Later writes are dropped.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		close(o.quit)
	})
}
