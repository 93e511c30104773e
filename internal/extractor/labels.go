// =============================================================================
// Text Info Extractor - Label Sets
// =============================================================================
//
// A label is a literal that must start a line for that line to describe a
// field, e.g. "姓名：". Every field accepts one or more labels, listed in
// descending priority. Two built-in profiles exist:
//
//   full   : every synonym plus the 初始价格 / 初始价 price fallback chain
//   strict : one label for ID and phone, no price fallback
//
// Any field list may be overridden from configuration.
//
// =============================================================================

package extractor

import (
	"fmt"
	"strings"
)

// Profile names accepted by LabelsForProfile.
const (
	ProfileFull   = "full"
	ProfileStrict = "strict"
)

// LabelSet holds the accepted labels for every field, highest priority first.
type LabelSet struct {
	Name        []string `yaml:"name" json:"name"`
	IDNumber    []string `yaml:"id_number" json:"id_number"`
	PhoneNumber []string `yaml:"phone_number" json:"phone_number"`
	ItemName    []string `yaml:"item_name" json:"item_name"`
	Price       []string `yaml:"price" json:"price"`

	// PriceFallback labels are searched anywhere in the raw text, and only
	// when no Price label starts any line. A set without fallback labels has
	// no chain. Merge cannot clear this list: an empty override keeps the
	// base labels.
	PriceFallback []string `yaml:"price_fallback" json:"price_fallback"`
}

// FullLabels returns the most permissive label set.
func FullLabels() LabelSet {
	return LabelSet{
		Name:          []string{"姓名："},
		IDNumber:      []string{"身份证号码：", "身份证："},
		PhoneNumber:   []string{"手机号：", "电话号码：", "手机："},
		ItemName:      []string{"名称："},
		Price:         []string{"价格："},
		PriceFallback: []string{"初始价格：", "初始价："},
	}
}

// StrictLabels returns the narrow label set: a single label per field and
// no price fallback.
func StrictLabels() LabelSet {
	return LabelSet{
		Name:        []string{"姓名："},
		IDNumber:    []string{"身份证号码："},
		PhoneNumber: []string{"手机号："},
		ItemName:    []string{"名称："},
		Price:       []string{"价格："},
	}
}

// LabelsForProfile returns the built-in label set with the given name.
// An empty name selects the full profile.
func LabelsForProfile(profile string) (LabelSet, error) {
	switch strings.ToLower(strings.TrimSpace(profile)) {
	case "", ProfileFull:
		return FullLabels(), nil
	case ProfileStrict:
		return StrictLabels(), nil
	default:
		return LabelSet{}, fmt.Errorf("unknown label profile %q (want %q or %q)", profile, ProfileFull, ProfileStrict)
	}
}

// Merge returns a copy of ls where every non-empty list in overrides
// replaces the corresponding list.
func (ls LabelSet) Merge(overrides LabelSet) LabelSet {
	pick := func(base, over []string) []string {
		if len(over) > 0 {
			return append([]string(nil), over...)
		}
		return append([]string(nil), base...)
	}
	return LabelSet{
		Name:          pick(ls.Name, overrides.Name),
		IDNumber:      pick(ls.IDNumber, overrides.IDNumber),
		PhoneNumber:   pick(ls.PhoneNumber, overrides.PhoneNumber),
		ItemName:      pick(ls.ItemName, overrides.ItemName),
		Price:         pick(ls.Price, overrides.Price),
		PriceFallback: pick(ls.PriceFallback, overrides.PriceFallback),
	}
}

// Validate checks that every field has at least one non-blank label.
// The price fallback list may be empty.
func (ls LabelSet) Validate() error {
	fields := []struct {
		name   string
		labels []string
	}{
		{"name", ls.Name},
		{"id_number", ls.IDNumber},
		{"phone_number", ls.PhoneNumber},
		{"item_name", ls.ItemName},
		{"price", ls.Price},
	}
	for _, f := range fields {
		if len(f.labels) == 0 {
			return fmt.Errorf("field %s has no labels", f.name)
		}
		for _, l := range f.labels {
			if strings.TrimSpace(l) == "" {
				return fmt.Errorf("field %s has a blank label", f.name)
			}
		}
	}
	for _, l := range ls.PriceFallback {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("field price_fallback has a blank label")
		}
	}
	return nil
}
