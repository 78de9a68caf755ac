// Package sequence provides domain contracts for entity code allocation.
// Codes are a short alphabetic prefix plus a fixed-width numeric suffix
// (item "TEL01", quotation "COT10001"). Implementations live in the
// infrastructure layer.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a coded-entity family. Each kind maps to one code column
// with a unique index; the index is what resolves concurrent allocations.
type Kind string

const (
	KindItem      Kind = "item"
	KindAddition  Kind = "addition"
	KindQuotation Kind = "quotation"
)

// PrefixFiller pads category-derived prefixes shorter than three characters.
const PrefixFiller = 'X'

// Config holds code allocation parameters for one prefix.
type Config struct {
	// Kind selects the backing code column
	Kind Kind

	// Prefix is the literal code prefix (e.g. "TEL", "COT")
	Prefix string

	// SuffixWidth is the fixed numeric suffix width (zero-padded)
	SuffixWidth int

	// Base offsets the sequence start: the first allocated suffix is Base+1.
	// Used by sequences that must not collide with legacy ranges.
	Base int64
}

// ForItem returns the allocation config for an inventory item whose
// category is the prefix source. Two-digit suffix, capped at 99 per prefix.
func ForItem(category string) Config {
	return Config{
		Kind:        KindItem,
		Prefix:      PrefixFromCategory(category),
		SuffixWidth: 2,
	}
}

// ForAddition returns the allocation config for an addition (add-on product).
// Same shape as item codes, separate code column.
func ForAddition(category string) Config {
	return Config{
		Kind:        KindAddition,
		Prefix:      PrefixFromCategory(category),
		SuffixWidth: 2,
	}
}

// ForQuotation returns the allocation config for quotation codes.
// Flat "COT" prefix, five digits, starting above the legacy 10000 range.
func ForQuotation() Config {
	return Config{
		Kind:        KindQuotation,
		Prefix:      "COT",
		SuffixWidth: 5,
		Base:        10000,
	}
}

// PrefixFromCategory derives a 3-character prefix from a category name:
// uppercase, non-alphanumerics stripped, truncated to 3, padded with 'X'.
// "Telas Especiales" -> "TEL", "Tu" -> "TUX".
func PrefixFromCategory(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == 3 {
				break
			}
		}
	}
	prefix := b.String()
	for len(prefix) < 3 {
		prefix += string(PrefixFiller)
	}
	return prefix
}

// MaxSuffix returns the largest suffix the fixed width can hold.
func (c Config) MaxSuffix() int64 {
	max := int64(1)
	for i := 0; i < c.SuffixWidth; i++ {
		max *= 10
	}
	return max - 1
}

// Format renders a code for the given suffix, zero-padded to SuffixWidth.
func (c Config) Format(suffix int64) string {
	return fmt.Sprintf("%s%0*d", c.Prefix, c.SuffixWidth, suffix)
}

// ParseSuffix extracts the numeric suffix from a code with this prefix.
// Returns false when the code does not belong to the sequence.
func (c Config) ParseSuffix(code string) (int64, bool) {
	if !strings.HasPrefix(code, c.Prefix) {
		return 0, false
	}
	rest := code[len(c.Prefix):]
	if len(rest) != c.SuffixWidth {
		return 0, false
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Validate checks config invariants.
func (c Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("sequence config: empty prefix")
	}
	if c.SuffixWidth <= 0 {
		return fmt.Errorf("sequence config: suffix width must be positive")
	}
	if c.Base < 0 || c.Base >= c.MaxSuffix() {
		return fmt.Errorf("sequence config: base %d out of range for width %d", c.Base, c.SuffixWidth)
	}
	return nil
}
