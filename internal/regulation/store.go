package regulation

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/packsafe/previewcore/internal/model"
)

type index struct {
	byKey          map[string][]model.RegulationRule // scope|code|item_category
	byScope        map[string][]model.RegulationRule // scope|code
	byCountry      map[string][]model.RegulationRule // country_iso|item_category, scope=country only
	byIntlCategory map[string][]model.RegulationRule // item_category, scope=international only, any code
}

func buildIndex(rules []model.RegulationRule) *index {
	idx := &index{
		byKey:          make(map[string][]model.RegulationRule),
		byScope:        make(map[string][]model.RegulationRule),
		byCountry:      make(map[string][]model.RegulationRule),
		byIntlCategory: make(map[string][]model.RegulationRule),
	}
	for _, r := range rules {
		key := indexKey(string(r.Scope), r.Code, r.ItemCategory)
		idx.byKey[key] = append(idx.byKey[key], r)
		scopeKey := indexKey(string(r.Scope), r.Code, "")
		idx.byScope[scopeKey] = append(idx.byScope[scopeKey], r)
		if r.Scope == model.ScopeCountry && r.CountryISO != "" {
			countryKey := indexKey(r.CountryISO, r.ItemCategory, "")
			idx.byCountry[countryKey] = append(idx.byCountry[countryKey], r)
		}
		if r.Scope == model.ScopeInternational {
			idx.byIntlCategory[r.ItemCategory] = append(idx.byIntlCategory[r.ItemCategory], r)
		}
	}
	return idx
}

func indexKey(scope, code, category string) string {
	return scope + "\x1f" + code + "\x1f" + category
}

// Store holds the current regulation index behind an atomic pointer so
// concurrent readers never observe a torn reload; each preview request
// captures the pointer once at the start of resolution and uses that
// snapshot throughout (§5's concurrency model).
type Store struct {
	dir          string
	current      atomic.Pointer[index]
	logger       *slog.Logger
	lastReloaded atomic.Int64 // unix nanos
}

// NewStore loads dir once and returns a ready Store.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{dir: dir, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads and re-validates every file in the store's directory and
// atomically swaps in the new index. On validation failure the previous
// index is left untouched.
func (s *Store) Reload() error {
	rules, err := LoadDirectory(s.dir)
	if err != nil {
		return err
	}
	s.current.Store(buildIndex(rules))
	s.lastReloaded.Store(time.Now().UnixNano())
	s.logger.Info("regulation store reloaded", "dir", s.dir, "rule_count", len(rules))
	return nil
}

// LastReloaded returns when the current snapshot was published.
func (s *Store) LastReloaded() time.Time {
	ns := s.lastReloaded.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// RuleCount returns the number of rules in the current snapshot.
func (s *Store) RuleCount() int {
	idx := s.current.Load()
	if idx == nil {
		return 0
	}
	n := 0
	for _, rules := range idx.byKey {
		n += len(rules)
	}
	return n
}

// Find returns every rule matching (scope, code, item_category), including
// conditional variants, from the snapshot in effect when Find is called.
func (s *Store) Find(scope model.Scope, code, itemCategory string) []model.RegulationRule {
	idx := s.current.Load()
	if idx == nil {
		return nil
	}
	return idx.byKey[indexKey(string(scope), code, itemCategory)]
}

// FindScope returns every rule published under (scope, code) regardless of
// item category.
func (s *Store) FindScope(scope model.Scope, code string) []model.RegulationRule {
	idx := s.current.Load()
	if idx == nil {
		return nil
	}
	return idx.byScope[indexKey(string(scope), code, "")]
}

// FindCountry returns every country-scope rule published for countryISO
// and itemCategory, across every regulation code that country publishes
// under (e.g. both US_TSA and US_PACKSAFE_MD for "US").
func (s *Store) FindCountry(countryISO, itemCategory string) []model.RegulationRule {
	idx := s.current.Load()
	if idx == nil {
		return nil
	}
	return idx.byCountry[indexKey(countryISO, itemCategory, "")]
}

// FindInternational returns every international-scope rule for
// itemCategory, across every dangerous-goods code (IATA, ICAO, ...) —
// the international layer is keyed on the canonical alone, per §4.6.
func (s *Store) FindInternational(itemCategory string) []model.RegulationRule {
	idx := s.current.Load()
	if idx == nil {
		return nil
	}
	return idx.byIntlCategory[itemCategory]
}

// Watcher hot-reloads the store whenever a file under its directory changes,
// debouncing bursts of writes into a single reload the way the teacher's
// policy reloader debounces config edits.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	store     *Store
	logger    *slog.Logger
}

// NewWatcher starts watching store's directory for writes and creates.
func NewWatcher(store *Store, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("regulation: create watcher: %w", err)
	}
	if err := fw.Add(store.dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("regulation: watch %s: %w", store.dir, err)
	}
	return &Watcher{fsWatcher: fw, store: store, logger: logger}, nil
}

// Run blocks, reloading the store on debounced filesystem events, until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsWatcher.Close()

	const debounceWindow = 500 * time.Millisecond
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				if err := w.store.Reload(); err != nil {
					w.logger.Error("regulation hot-reload failed", "error", err)
				}
			})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("regulation watcher error", "error", err)
		}
	}
}
