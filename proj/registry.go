// Copyright 2026 The AquaKML Authors
//
// SPDX-License-Identifier: Apache-2.0
package proj

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrUnknownSystem reports a lookup for a system name the registry does
// not carry.
var ErrUnknownSystem = errors.New("система координат не зарегистрирована")

// zoneNameRegex splits "МСК-06 зона 1" into its prefix and zone number.
var zoneNameRegex = regexp.MustCompile(`^(МСК-[^з]+?)\s+зона\s+\d+`)

// Registry lazily loads named coordinate system definitions from a JSON
// config ({"МСК-50 зона 2": "+proj=tmerc …"}) and caches one built
// Transformer per system for the lifetime of the process. The cache is
// read-only after construction and safe for concurrent callers; the
// first load wins under concurrent first access.
//
// Missing or malformed configuration is fatal for the registry: it never
// proceeds with zero transformers, because that would surface as a
// misleading "unknown system" on every metric-grid row. Callers turn
// the load error into a row-scoped parse failure.
type Registry struct {
	path string

	once         sync.Once
	err          error
	transformers map[string]Transformer
	// matchOrder holds system names longest-first so that "МСК-50 зона 2"
	// is tried before the bare "МСК-50" alias when both occur in a string.
	matchOrder []string
	// zoneGroups maps a prefix to its full zone names, kept to tell an
	// ambiguous bare-prefix reference apart from a genuinely unknown one.
	zoneGroups map[string][]string
}

// NewRegistry returns a registry bound to a config path. Nothing is
// read until the first lookup.
func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

func (r *Registry) load() error {
	r.once.Do(func() {
		r.err = r.build()
		if r.err != nil {
			// Loud on purpose: every metric-grid row in the batch will fail.
			log.Error().Err(r.err).Str("path", r.path).
				Msg("не удалось загрузить описания проекций")
		}
	})

	return r.err
}

func (r *Registry) build() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("чтение файла проекций %q: %w", r.path, err)
	}

	var defs map[string]string
	if err := json.Unmarshal(data, &defs); err != nil {
		return fmt.Errorf("разбор файла проекций %q: %w", r.path, err)
	}

	if len(defs) == 0 {
		return fmt.Errorf("файл проекций %q не содержит ни одной системы", r.path)
	}

	// First pass: group the zone variants by prefix. Aliasing decisions
	// need full group membership, never the first zone that happens to
	// come out of map iteration.
	r.zoneGroups = make(map[string][]string)

	for name := range defs {
		if m := zoneNameRegex.FindStringSubmatch(name); m != nil {
			prefix := strings.TrimSpace(m[1])
			r.zoneGroups[prefix] = append(r.zoneGroups[prefix], name)
		}
	}

	for prefix := range r.zoneGroups {
		sort.Strings(r.zoneGroups[prefix])
	}

	// Second pass: register a bare-prefix alias only for single-zone
	// groups, and only when the alias name is not itself defined.
	for prefix, zones := range r.zoneGroups {
		if len(zones) != 1 {
			continue
		}

		if _, exists := defs[prefix]; exists {
			continue
		}

		defs[prefix] = defs[zones[0]]
		log.Debug().Str("alias", prefix).Str("system", zones[0]).
			Msg("добавлен алиас проекции")
	}

	r.transformers = make(map[string]Transformer, len(defs))

	for name, proj4 := range defs {
		def, err := ParseDefinition(proj4)
		if err != nil {
			return fmt.Errorf("система %q: %w", name, err)
		}

		tr, err := NewTransformer(def)
		if err != nil {
			return fmt.Errorf("система %q: %w", name, err)
		}

		r.transformers[name] = tr
	}

	r.matchOrder = make([]string, 0, len(r.transformers))
	for name := range r.transformers {
		r.matchOrder = append(r.matchOrder, name)
	}

	sort.Slice(r.matchOrder, func(i, j int) bool {
		a, b := r.matchOrder[i], r.matchOrder[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}

		return a < b
	})

	return nil
}

// Transformer returns the transformer registered under name.
func (r *Registry) Transformer(name string) (Transformer, error) {
	if err := r.load(); err != nil {
		return nil, err
	}

	tr, ok := r.transformers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
	}

	return tr, nil
}

// Match finds the registered system whose name occurs verbatim inside
// text. Longer names win over their aliases. A miss is not an error:
// the caller decides what "no known system in the string" means.
func (r *Registry) Match(text string) (string, Transformer, error) {
	if err := r.load(); err != nil {
		return "", nil, err
	}

	for _, name := range r.matchOrder {
		if strings.Contains(text, name) {
			return name, r.transformers[name], nil
		}
	}

	return "", nil, nil
}

// Ambiguous reports a bare multi-zone prefix occurring in text, e.g.
// "МСК-50" when both zones 1 and 2 are registered and the text names
// neither. These used to surface as "unknown system", which confused
// operators into checking the config for a system that was there.
func (r *Registry) Ambiguous(text string) (string, []string, error) {
	if err := r.load(); err != nil {
		return "", nil, err
	}

	for prefix, zones := range r.zoneGroups {
		if len(zones) > 1 && strings.Contains(text, prefix) {
			return prefix, zones, nil
		}
	}

	return "", nil, nil
}

// Names returns every registered system name, aliases included, sorted.
func (r *Registry) Names() ([]string, error) {
	if err := r.load(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(r.transformers))
	for name := range r.transformers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}
