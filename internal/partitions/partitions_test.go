package partitions

import (
	"errors"
	"testing"
)

func TestResolveKnownPartition(t *testing.T) {
	p, err := Resolve("9U-select", "all-tiers")
	if err != nil {
		t.Fatalf("expected resolve to succeed, got %v", err)
	}
	if p.DivisionValue != "13" || p.TierValue != "__ALL__" {
		t.Fatalf("unexpected form values %q/%q", p.DivisionValue, p.TierValue)
	}
	if p.Key() != "9U-select/all-tiers" {
		t.Fatalf("unexpected key %q", p.Key())
	}
	if p.DisplayName != "9U Select All Tiers" {
		t.Fatalf("unexpected display name %q", p.DisplayName)
	}
}

func TestResolveUnknownPartition(t *testing.T) {
	cases := []struct {
		division, tier string
	}{
		{"99U-foo", "x"},
		{"9U-select", "tier-9"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := Resolve(tc.division, tc.tier); !errors.Is(err, ErrUnknownPartition) {
			t.Fatalf("expected ErrUnknownPartition for %s/%s, got %v", tc.division, tc.tier, err)
		}
	}
}

func TestAllEnumeratesEveryPartition(t *testing.T) {
	all := All()
	if len(all) != 32 {
		t.Fatalf("expected 32 partitions, got %d", len(all))
	}
	seen := make(map[string]bool, len(all))
	for _, p := range all {
		if seen[p.Key()] {
			t.Fatalf("duplicate partition key %q", p.Key())
		}
		seen[p.Key()] = true
	}
	if all[0].Key() != "8U-select/all-tiers" {
		t.Fatalf("expected stable ordering, first was %q", all[0].Key())
	}
}

func TestTeamName(t *testing.T) {
	name, ok := TeamName("511113")
	if !ok || name != "Richmond Hill Phoenix 9U DS" {
		t.Fatalf("unexpected lookup result %q %v", name, ok)
	}
	if _, ok := TeamName("000000"); ok {
		t.Fatal("expected miss for unknown id")
	}
}
