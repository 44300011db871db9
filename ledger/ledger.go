// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ledger

import (
	"slices"
	"strings"
	"sync"
)

// Key is any string-like identifier tracked by a ledger.
type Key interface {
	~string
}

// normalize returns the canonical comparison form of k.
func normalize[K Key](k K) K {
	return K(strings.TrimSpace(string(k)))
}

// Set is an immutable set of identifiers.
type Set[K Key] struct {
	known map[K]struct{}
}

// NewSet creates a set holding the given keys. Empty keys are ignored.
func NewSet[K Key](keys ...K) Set[K] {
	known := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		k = normalize(k)
		if k == "" {
			continue
		}
		known[k] = struct{}{}
	}
	return Set[K]{known: known}
}

// Contains returns true if the key is known.
func (s Set[K]) Contains(k K) bool {
	_, ok := s.known[normalize(k)]
	return ok
}

// Len returns the number of known keys.
func (s Set[K]) Len() int {
	return len(s.known)
}

// Keys returns the known keys in sorted order.
func (s Set[K]) Keys() []K {
	keys := make([]K, 0, len(s.known))
	for k := range s.known {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Union returns a new set holding the keys of s and the given keys.
func (s Set[K]) Union(keys ...K) Set[K] {
	known := make(map[K]struct{}, len(s.known)+len(keys))
	for k := range s.known {
		known[k] = struct{}{}
	}
	for _, k := range keys {
		k = normalize(k)
		if k == "" {
			continue
		}
		known[k] = struct{}{}
	}
	return Set[K]{known: known}
}

// Delta returns the upstream keys that are not in known, preserving upstream
// order and collapsing duplicates. An empty known set makes every upstream key
// new; an empty upstream yields an empty delta.
func Delta[K Key](known Set[K], upstream []K) []K {
	delta := make([]K, 0, len(upstream))
	seen := make(map[K]struct{}, len(upstream))
	for _, k := range upstream {
		k = normalize(k)
		if k == "" || known.Contains(k) {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		delta = append(delta, k)
	}
	return delta
}

// SyncSet is a set that is safe for concurrent use.
type SyncSet[K Key] struct {
	mu    sync.Mutex
	known map[K]struct{}
}

// NewSyncSet creates a concurrent set seeded with the keys of base.
func NewSyncSet[K Key](base Set[K]) *SyncSet[K] {
	known := make(map[K]struct{}, base.Len())
	for k := range base.known {
		known[k] = struct{}{}
	}
	return &SyncSet[K]{known: known}
}

// Add records k and reports whether it was not already present.
func (s *SyncSet[K]) Add(k K) bool {
	k = normalize(k)
	if k == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.known[k]; ok {
		return false
	}
	s.known[k] = struct{}{}
	return true
}

// Contains returns true if the key is known.
func (s *SyncSet[K]) Contains(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.known[normalize(k)]
	return ok
}

// Snapshot returns an immutable copy of the current contents.
func (s *SyncSet[K]) Snapshot() Set[K] {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := make(map[K]struct{}, len(s.known))
	for k := range s.known {
		known[k] = struct{}{}
	}
	return Set[K]{known: known}
}
