package core

import (
	"sort"

	"domverify/internal/shared"
	"domverify/internal/types"
)

type selectionKey struct {
	userID      int
	packageName string
}

// UserSelectionStore keeps per-user, per-package link handling overrides.
// Records that return to the default state are dropped.
type UserSelectionStore struct {
	records map[selectionKey]*types.UserSelectionRecord
}

func NewUserSelectionStore() *UserSelectionStore {
	return &UserSelectionStore{records: map[selectionKey]*types.UserSelectionRecord{}}
}

// Get returns a copy of the record, or the default when none is stored.
func (s *UserSelectionStore) Get(userID int, packageName string) types.UserSelectionRecord {
	record, ok := s.records[selectionKey{userID: userID, packageName: packageName}]
	if !ok {
		return types.DefaultUserSelection(userID, packageName)
	}
	out := *record
	out.SelectedDomains = record.SelectedDomains.Clone()
	return out
}

// Put stores a full record, replacing any existing one.
func (s *UserSelectionStore) Put(record types.UserSelectionRecord) {
	if record.SelectedDomains == nil {
		record.SelectedDomains = types.DomainSet{}
	}
	if record.Legacy == "" {
		record.Legacy = types.LegacyStateUndefined
	}
	key := selectionKey{userID: record.UserID, packageName: record.PackageName}
	s.records[key] = &record
	s.compact(key)
}

func (s *UserSelectionStore) SetSelected(userID int, packageName string, domain string, selected bool) bool {
	key := selectionKey{userID: userID, packageName: packageName}
	if !selected {
		record, ok := s.records[key]
		if !ok || !record.SelectedDomains.Has(domain) {
			return false
		}
		delete(record.SelectedDomains, domain)
		s.compact(key)
		return true
	}
	record := s.mutable(key)
	if record.SelectedDomains.Has(domain) {
		return false
	}
	record.SelectedDomains[domain] = struct{}{}
	return true
}

// Deselect clears every selected entry of packageName that overlaps domain,
// returning the entries removed.
func (s *UserSelectionStore) Deselect(userID int, packageName string, domain string) []string {
	key := selectionKey{userID: userID, packageName: packageName}
	record, ok := s.records[key]
	if !ok {
		return nil
	}
	var removed []string
	for _, entry := range record.SelectedDomains.Sorted() {
		if overlaps(entry, domain) {
			delete(record.SelectedDomains, entry)
			removed = append(removed, entry)
		}
	}
	s.compact(key)
	return removed
}

func (s *UserSelectionStore) SetLinkHandlingAllowed(packageName string, allowed bool, userID int) bool {
	key := selectionKey{userID: userID, packageName: packageName}
	if current := s.Get(userID, packageName); current.LinkHandlingAllowed == allowed {
		return false
	}
	s.mutable(key).LinkHandlingAllowed = allowed
	s.compact(key)
	return true
}

func (s *UserSelectionStore) SetLegacyState(packageName string, userID int, state types.LegacyState) bool {
	key := selectionKey{userID: userID, packageName: packageName}
	if current := s.Get(userID, packageName); current.Legacy == state {
		return false
	}
	s.mutable(key).Legacy = state
	s.compact(key)
	return true
}

// Holders returns the packages whose selection for userID overlaps domain.
func (s *UserSelectionStore) Holders(domain string, userID int) []string {
	var holders []string
	for key, record := range s.records {
		if key.userID != userID {
			continue
		}
		for entry := range record.SelectedDomains {
			if overlaps(entry, domain) {
				holders = append(holders, key.packageName)
				break
			}
		}
	}
	sort.Strings(holders)
	return holders
}

func (s *UserSelectionStore) ClearUser(userID int) int {
	removed := 0
	for key := range s.records {
		if key.userID == userID {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

func (s *UserSelectionStore) ClearUserStates(packageNames []string, userID int) int {
	removed := 0
	for _, name := range packageNames {
		key := selectionKey{userID: userID, packageName: name}
		if _, ok := s.records[key]; ok {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

func (s *UserSelectionStore) ClearPackage(packageName string) int {
	removed := 0
	for key := range s.records {
		if key.packageName == packageName {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

// RetainSelected drops selected entries of packageName, for every user, that
// are not in keep.
func (s *UserSelectionStore) RetainSelected(packageName string, keep types.DomainSet) {
	for key, record := range s.records {
		if key.packageName != packageName {
			continue
		}
		for entry := range record.SelectedDomains {
			if !keep.Has(entry) {
				delete(record.SelectedDomains, entry)
			}
		}
		s.compact(key)
	}
}

// RecordsFor returns copies of every stored record of packageName ordered by
// user.
func (s *UserSelectionStore) RecordsFor(packageName string) []types.UserSelectionRecord {
	var out []types.UserSelectionRecord
	for key := range s.records {
		if key.packageName == packageName {
			out = append(out, s.Get(key.userID, key.packageName))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Users returns every user with at least one stored record.
func (s *UserSelectionStore) Users() []int {
	seen := map[int]struct{}{}
	for key := range s.records {
		seen[key.userID] = struct{}{}
	}
	users := make([]int, 0, len(seen))
	for userID := range seen {
		users = append(users, userID)
	}
	sort.Ints(users)
	return users
}

func (s *UserSelectionStore) mutable(key selectionKey) *types.UserSelectionRecord {
	record, ok := s.records[key]
	if !ok {
		fresh := types.DefaultUserSelection(key.userID, key.packageName)
		record = &fresh
		s.records[key] = record
	}
	return record
}

func (s *UserSelectionStore) compact(key selectionKey) {
	if record, ok := s.records[key]; ok && record.IsDefault() {
		delete(s.records, key)
	}
}

func overlaps(a string, b string) bool {
	return shared.MatchesDomain(a, b) || shared.MatchesDomain(b, a)
}
