package ledger

import (
	"strings"

	"github.com/ardash/backend/internal/domain/shared"
)

// Region is a coarse geographic partition derived from an invoice's branch
// name, used to scope aggregates and snapshots.
type Region string

const (
	RegionAll      Region = "all"
	RegionPhoenix  Region = "phoenix"
	RegionLasVegas Region = "las-vegas"
)

// phoenixBranches is the fixed allowlist of branch names belonging to the
// phoenix region. Historical snapshots were aggregated against exactly this
// list, so it must not be altered without re-baselining stored snapshots.
var phoenixBranches = map[string]struct{}{
	"Phx - North":   {},
	"Phx - South":   {},
	"Phx - Central": {},
	"Phx - West":    {},
}

// ParseRegion validates and normalizes a region string
func ParseRegion(s string) (Region, error) {
	switch Region(strings.ToLower(strings.TrimSpace(s))) {
	case RegionAll, "":
		return RegionAll, nil
	case RegionPhoenix:
		return RegionPhoenix, nil
	case RegionLasVegas:
		return RegionLasVegas, nil
	}
	return "", shared.NewDomainError("INVALID_REGION", "Region must be one of: all, phoenix, las-vegas")
}

// IsValid checks if the region is one of the known partitions
func (r Region) IsValid() bool {
	return r == RegionAll || r == RegionPhoenix || r == RegionLasVegas
}

// String returns the string representation of Region
func (r Region) String() string {
	return string(r)
}

// Matches reports whether an invoice with the given branch name belongs to
// the region. The las-vegas predicate is a case-insensitive substring match
// on "vegas"; phoenix is an exact allowlist lookup.
func (r Region) Matches(branchName string) bool {
	switch r {
	case RegionAll:
		return true
	case RegionPhoenix:
		_, ok := phoenixBranches[branchName]
		return ok
	case RegionLasVegas:
		return strings.Contains(strings.ToLower(branchName), "vegas")
	}
	return false
}

// FilterByRegion returns the subset of records whose branch matches the region
func FilterByRegion(records []Invoice, region Region) []Invoice {
	if region == RegionAll {
		return records
	}
	filtered := make([]Invoice, 0, len(records))
	for _, inv := range records {
		if region.Matches(inv.BranchName) {
			filtered = append(filtered, inv)
		}
	}
	return filtered
}
