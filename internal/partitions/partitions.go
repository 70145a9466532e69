package partitions

import (
	"errors"
	"fmt"
)

// ErrUnknownPartition is returned for (division, tier) keys that are not
// configured. It is a client error and must never be retried.
var ErrUnknownPartition = errors.New("unknown partition")

// Partition identifies one division/tier combination and carries the form
// values the results portal expects. Partitions are defined at configuration
// time and never created at runtime.
type Partition struct {
	Division      string
	Tier          string
	DivisionValue string
	TierValue     string
	DisplayName   string
}

// Key returns the logical cache key for the partition.
func (p Partition) Key() string {
	return p.Division + "/" + p.Tier
}

// divisionValues maps logical division keys to the portal's division
// dropdown values.
var divisionValues = map[string]string{
	"8U-select":  "12",
	"9U-select":  "13",
	"10U-select": "14",
	"11U-select": "15",
	"12U-select": "16",
	"13U-select": "17",
	"14U-select": "18",
	"15U-select": "19",
}

// tierValues maps logical tier keys to the portal's tier dropdown values.
// The tier dropdown only populates after the division commits; "__ALL__" is
// the portal's own wildcard value.
var tierValues = map[string]string{
	"all-tiers": "__ALL__",
	"tier-1":    "1",
	"tier-2":    "2",
	"tier-3":    "3",
}

var divisionLabels = map[string]string{
	"8U-select":  "8U Select",
	"9U-select":  "9U Select",
	"10U-select": "10U Select",
	"11U-select": "11U Select",
	"12U-select": "12U Select",
	"13U-select": "13U Select",
	"14U-select": "14U Select",
	"15U-select": "15U Select",
}

var tierLabels = map[string]string{
	"all-tiers": "All Tiers",
	"tier-1":    "Tier 1",
	"tier-2":    "Tier 2",
	"tier-3":    "Tier 3",
}

// divisionOrder keeps All() deterministic for the refresher.
var divisionOrder = []string{
	"8U-select", "9U-select", "10U-select", "11U-select",
	"12U-select", "13U-select", "14U-select", "15U-select",
}

var tierOrder = []string{"all-tiers", "tier-1", "tier-2", "tier-3"}

// Resolve maps a logical (division, tier) key to its Partition. Unknown keys
// return ErrUnknownPartition.
func Resolve(division, tier string) (Partition, error) {
	dv, ok := divisionValues[division]
	if !ok {
		return Partition{}, fmt.Errorf("%w: %s/%s", ErrUnknownPartition, division, tier)
	}
	tv, ok := tierValues[tier]
	if !ok {
		return Partition{}, fmt.Errorf("%w: %s/%s", ErrUnknownPartition, division, tier)
	}
	return Partition{
		Division:      division,
		Tier:          tier,
		DivisionValue: dv,
		TierValue:     tv,
		DisplayName:   divisionLabels[division] + " " + tierLabels[tier],
	}, nil
}

// All enumerates every configured partition in a stable order.
func All() []Partition {
	out := make([]Partition, 0, len(divisionOrder)*len(tierOrder))
	for _, d := range divisionOrder {
		for _, t := range tierOrder {
			p, err := Resolve(d, t)
			if err != nil {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
