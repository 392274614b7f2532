package shortcut

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voicelink/internal/intent"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultReloadTimeout   = 10 * time.Second
	defaultDonationTimeout = 5 * time.Second
)

// Registry tracks the current set of known voice shortcuts and donates
// intents to the platform services. It is safe for concurrent use: readers
// never observe a partially replaced snapshot.
type Registry struct {
	store     ShortcutStore
	donor     InteractionDonor
	relevance RelevanceStore
	logger    *zap.Logger

	reloadTimeout   time.Duration
	donationTimeout time.Duration

	// reloads collapses overlapping ReloadAll calls into one store fetch,
	// so a slow first reload can never overwrite a newer one's snapshot.
	reloads singleflight.Group

	mu       sync.RWMutex
	snapshot []VoiceShortcut

	async sync.WaitGroup
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReloadTimeout sets the deadline applied to ReloadAll when the
// caller's context carries none. Zero disables the default deadline.
func WithReloadTimeout(d time.Duration) Option {
	return func(r *Registry) { r.reloadTimeout = d }
}

// WithDonationTimeout sets the deadline applied to Donate when the
// caller's context carries none. Zero disables the default deadline.
func WithDonationTimeout(d time.Duration) Option {
	return func(r *Registry) { r.donationTimeout = d }
}

// NewRegistry creates a registry over the given platform services.
// The snapshot starts empty; call ReloadAll to populate it.
func NewRegistry(store ShortcutStore, donor InteractionDonor, relevance RelevanceStore, opts ...Option) *Registry {
	r := &Registry{
		store:           store,
		donor:           donor,
		relevance:       relevance,
		logger:          zap.NewNop(),
		reloadTimeout:   defaultReloadTimeout,
		donationTimeout: defaultDonationTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReloadAll fetches the full current shortcut list from the store and
// replaces the in-memory snapshot atomically on success.
//
// On failure the existing snapshot is left untouched, the failure is
// logged, and a wrapped error is returned; the registry keeps serving its
// last-known snapshot. Overlapping calls share a single in-flight fetch
// and all observe its result; the shared fetch is bounded by the reload
// timeout and survives cancellation of the caller that started it.
func (r *Registry) ReloadAll(ctx context.Context) error {
	_, err, _ := r.reloads.Do("reload", func() (any, error) {
		// The fetch is shared by every caller that joined the flight, so
		// detach it from the initiating caller's cancellation and bound
		// it by the reload timeout alone.
		ctx, cancel := withDefaultTimeout(context.WithoutCancel(ctx), r.reloadTimeout)
		defer cancel()

		shortcuts, err := r.store.ListAll(ctx)
		if err != nil {
			r.logger.Warn("shortcut reload failed, keeping previous snapshot",
				zap.Error(err))
			if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrStoreUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}

		snap := make([]VoiceShortcut, len(shortcuts))
		copy(snap, shortcuts)

		r.mu.Lock()
		r.snapshot = snap
		r.mu.Unlock()

		r.logger.Debug("shortcut snapshot replaced", zap.Int("count", len(snap)))
		return nil, nil
	})
	return err
}

// HasShortcut reports whether the current snapshot contains a shortcut
// wrapping an AddItem intent for the given store key.
func (r *Registry) HasShortcut(key string) bool {
	_, ok := r.FindShortcut(key)
	return ok
}

// FindShortcut returns the shortcut matching the given store key, if any.
// The UI layer uses this to render an "add" or "edit" affordance.
func (r *Registry) FindShortcut(key string) (VoiceShortcut, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, vs := range r.snapshot {
		if vs.Intent.Kind == intent.KindAddItem && vs.Intent.Store == key {
			return vs, true
		}
	}
	return VoiceShortcut{}, false
}

// Shortcuts returns a copy of the current snapshot.
func (r *Registry) Shortcuts() []VoiceShortcut {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]VoiceShortcut, len(r.snapshot))
	copy(out, r.snapshot)
	return out
}

// Count returns the number of shortcuts in the current snapshot.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshot)
}

// Donate forwards the intent to the interaction donor and the relevance
// store. The two calls are independent and run concurrently; each failure
// is logged, and any failure is reported wrapped in ErrDonationFailed.
//
// An empty groupID defaults to the intent's kind identifier, so repeated
// donations of the same logical action collapse into one group.
func (r *Registry) Donate(ctx context.Context, in intent.Intent, groupID string) error {
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: %s", intent.ErrUnsupportedKind, in.Kind)
	}
	if groupID == "" {
		groupID = in.GroupID()
	}

	ctx, cancel := withDefaultTimeout(ctx, r.donationTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		if err := r.donor.Donate(ctx, in, groupID); err != nil {
			r.logger.Warn("interaction donation failed",
				zap.String("group", groupID), zap.Error(err))
			return fmt.Errorf("interaction donation: %v", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.relevance.SetRelevant(ctx, []intent.Intent{in}); err != nil {
			r.logger.Warn("relevance donation failed",
				zap.String("group", groupID), zap.Error(err))
			return fmt.Errorf("relevance donation: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %v", ErrDonationFailed, err)
	}

	r.logger.Debug("intent donated",
		zap.String("group", groupID),
		zap.String("phrase", in.Phrase))
	return nil
}

// DonateAsync donates without blocking the caller. Failures are logged and
// swallowed; donation is an enhancement, never a correctness-critical path.
func (r *Registry) DonateAsync(in intent.Intent, groupID string) {
	r.async.Add(1)
	go func() {
		defer r.async.Done()
		if err := r.Donate(context.Background(), in, groupID); err != nil {
			r.logger.Debug("async donation dropped", zap.Error(err))
		}
	}()
}

// withDefaultTimeout applies d as the deadline when ctx has none.
func withDefaultTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
