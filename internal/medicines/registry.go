// Package medicines provides the drug-safety registry consulted when a
// recommendation lists contraindicated medication classes. Entries follow the
// Porphyria Foundation drug safety list format: class, type, generic name,
// brand name and a safety conclusion for porphyria patients.
package medicines

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// Safety conclusions used by the Porphyria Foundation list.
const (
	ConclusionOK        = "OK"
	ConclusionProbOK    = "PROB OK"
	ConclusionNotOK     = "NOT OK"
	ConclusionProbNotOK = "PROB NOT OK"
	ConclusionUncertain = "?"
)

// Query filters a registry lookup. A zero Query returns every entry.
type Query struct {
	// Search matches case-insensitively against generic name, brand name,
	// class and type.
	Search string
	// Class filters by exact drug class.
	Class string
	// Conclusion filters by exact safety conclusion.
	Conclusion string
}

func (q Query) cacheKey() string {
	return strings.ToLower(q.Search) + "|" + q.Class + "|" + q.Conclusion
}

// Registry is an in-memory medicine-safety lookup. The entry table is static,
// so query results are memoized in a small LRU cache keyed by the filter set.
type Registry struct {
	entries     []domain.Medicine
	classes     []string
	conclusions []string
	cache       *lru.Cache[string, []domain.Medicine]
	logger      *logrus.Logger
}

// defaultCacheSize bounds the memoized query results.
const defaultCacheSize = 256

// NewRegistry creates a registry over the built-in safety table.
func NewRegistry(logger *logrus.Logger) (*Registry, error) {
	return NewRegistryWithEntries(safetyTable, logger)
}

// NewRegistryWithEntries creates a registry over a caller-provided table.
func NewRegistryWithEntries(entries []domain.Medicine, logger *logrus.Logger) (*Registry, error) {
	cache, err := lru.New[string, []domain.Medicine](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating query cache: %w", err)
	}

	r := &Registry{
		entries:     entries,
		classes:     distinct(entries, func(m domain.Medicine) string { return m.Class }),
		conclusions: distinct(entries, func(m domain.Medicine) string { return m.Conclusion }),
		cache:       cache,
		logger:      logger,
	}

	logger.WithFields(logrus.Fields{
		"entries":     len(entries),
		"classes":     len(r.classes),
		"conclusions": len(r.conclusions),
	}).Info("Medicine safety registry loaded")

	return r, nil
}

// Find returns the entries matching the query, in table order.
func (r *Registry) Find(q Query) []domain.Medicine {
	key := q.cacheKey()
	if cached, ok := r.cache.Get(key); ok {
		r.logger.WithField("query", key).Debug("Medicine query cache hit")
		return cached
	}

	search := strings.ToLower(q.Search)
	var result []domain.Medicine
	for _, m := range r.entries {
		if q.Class != "" && m.Class != q.Class {
			continue
		}
		if q.Conclusion != "" && m.Conclusion != q.Conclusion {
			continue
		}
		if search != "" && !matchesSearch(m, search) {
			continue
		}
		result = append(result, m)
	}

	r.cache.Add(key, result)
	return result
}

// Lookup returns the entry for a generic name, case-insensitively.
func (r *Registry) Lookup(genericName string) (domain.Medicine, error) {
	name := strings.ToLower(genericName)
	for _, m := range r.entries {
		if strings.ToLower(m.GenericName) == name {
			return m, nil
		}
	}
	return domain.Medicine{}, fmt.Errorf("medicine %q: %w", genericName, domain.ErrNotFound)
}

// Classes returns the distinct drug classes in the table, sorted.
func (r *Registry) Classes() []string {
	return r.classes
}

// Conclusions returns the distinct safety conclusions in the table, sorted.
func (r *Registry) Conclusions() []string {
	return r.conclusions
}

// Len returns the number of entries in the table.
func (r *Registry) Len() int {
	return len(r.entries)
}

func matchesSearch(m domain.Medicine, search string) bool {
	return strings.Contains(strings.ToLower(m.GenericName), search) ||
		strings.Contains(strings.ToLower(m.BrandName), search) ||
		strings.Contains(strings.ToLower(m.Class), search) ||
		strings.Contains(strings.ToLower(m.Type), search)
}

func distinct(entries []domain.Medicine, field func(domain.Medicine) string) []string {
	seen := make(map[string]struct{}, len(entries))
	var values []string
	for _, m := range entries {
		v := field(m)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
