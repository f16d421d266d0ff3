package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-desk/internal/domain"
	"github.com/spec-kit/ticket-desk/internal/persistence"
	"github.com/spec-kit/ticket-desk/internal/store"
)

// Preference keys persisted alongside the tickets.
const (
	PrefSearch         = "search"
	PrefActiveTab      = "activeTab"
	PrefReportsTab     = "reportsTab"
	PrefMobileMenuOpen = "mobileMenuOpen"
	PrefCreateDraft    = "createDraft"
	PrefProfileDraft   = "profileDraft"
)

// ErrUnknownPreference is returned for keys outside the known set.
var ErrUnknownPreference = errors.New("unknown preference")

// ErrInvalidPreference wraps values that do not fit the preference.
var ErrInvalidPreference = errors.New("invalid preference value")

var (
	ticketTabs  = []string{"all", "open", "inprogress", "resolved"}
	reportsTabs = []string{"overview", "priority", "category", "performance"}
)

// DefaultProfileDraft is the profile form shown before any edit.
func DefaultProfileDraft() domain.ProfileDraft {
	return domain.ProfileDraft{
		Name:       "John Doe",
		Email:      "john.doe@example.com",
		Phone:      "+1 (555) 123-4567",
		Location:   "San Francisco, CA",
		Bio:        "Senior Software Engineer with 5+ years experience in full-stack development. Passionate about creating efficient solutions and helping teams deliver quality software.",
		Role:       "Developer",
		Department: "Engineering",
		JoinDate:   "January 15, 2022",
	}
}

// PreferencesRepository stores UI preferences, one storage key each.
type PreferencesRepository interface {
	Keys() []string
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, raw json.RawMessage) (any, error)
	Reset(ctx context.Context, key string) (any, error)

	Search(ctx context.Context) string
	ActiveTab(ctx context.Context) string
}

type preference interface {
	get(ctx context.Context) any
	set(ctx context.Context, raw json.RawMessage) (any, error)
	reset(ctx context.Context) any
}

type typedPreference[T any] struct {
	value    *store.Value[T]
	validate func(T) error
}

func (p typedPreference[T]) get(ctx context.Context) any { return p.value.Get(ctx) }

func (p typedPreference[T]) set(ctx context.Context, raw json.RawMessage) (any, error) {
	var val T
	if err := json.Unmarshal(raw, &val); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreference, err)
	}
	if p.validate != nil {
		if err := p.validate(val); err != nil {
			return nil, err
		}
	}
	p.value.Set(ctx, val)
	return val, nil
}

func (p typedPreference[T]) reset(ctx context.Context) any { return p.value.Reset(ctx) }

type preferencesRepository struct {
	search    *store.Value[string]
	activeTab *store.Value[string]
	prefs     map[string]preference
}

// NewPreferencesRepository binds every preference key on kv.
func NewPreferencesRepository(kv persistence.KV, logger *zap.Logger) PreferencesRepository {
	search := store.Bind(kv, PrefSearch, "", logger)
	activeTab := store.Bind(kv, PrefActiveTab, "all", logger)

	return &preferencesRepository{
		search:    search,
		activeTab: activeTab,
		prefs: map[string]preference{
			PrefSearch:    typedPreference[string]{value: search},
			PrefActiveTab: typedPreference[string]{value: activeTab, validate: oneOf(ticketTabs)},
			PrefReportsTab: typedPreference[string]{
				value:    store.Bind(kv, PrefReportsTab, "overview", logger),
				validate: oneOf(reportsTabs),
			},
			PrefMobileMenuOpen: typedPreference[bool]{value: store.Bind(kv, PrefMobileMenuOpen, false, logger)},
			PrefCreateDraft:    typedPreference[domain.TicketDraft]{value: store.Bind(kv, PrefCreateDraft, domain.TicketDraft{}, logger)},
			PrefProfileDraft:   typedPreference[domain.ProfileDraft]{value: store.Bind(kv, PrefProfileDraft, DefaultProfileDraft(), logger)},
		},
	}
}

func (r *preferencesRepository) Keys() []string {
	keys := make([]string, 0, len(r.prefs))
	for k := range r.prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *preferencesRepository) Get(ctx context.Context, key string) (any, error) {
	p, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return p.get(ctx), nil
}

func (r *preferencesRepository) Set(ctx context.Context, key string, raw json.RawMessage) (any, error) {
	p, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return p.set(ctx, raw)
}

func (r *preferencesRepository) Reset(ctx context.Context, key string) (any, error) {
	p, err := r.lookup(key)
	if err != nil {
		return nil, err
	}
	return p.reset(ctx), nil
}

func (r *preferencesRepository) Search(ctx context.Context) string { return r.search.Get(ctx) }

func (r *preferencesRepository) ActiveTab(ctx context.Context) string { return r.activeTab.Get(ctx) }

func (r *preferencesRepository) lookup(key string) (preference, error) {
	p, ok := r.prefs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreference, key)
	}
	return p, nil
}

func oneOf(allowed []string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("%w: %q is not one of %v", ErrInvalidPreference, v, allowed)
	}
}
