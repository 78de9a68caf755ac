package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixFromCategory(t *testing.T) {
	cases := []struct {
		name     string
		category string
		want     string
	}{
		{"two words", "Telas Especiales", "TEL"},
		{"lowercase", "algodon", "ALG"},
		{"short name padded", "Tu", "TUX"},
		{"single char", "a", "AXX"},
		{"punctuation stripped", "B-52 Foam", "B52"},
		{"leading spaces", "  hilos  ", "HIL"},
		{"empty", "", "XXX"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PrefixFromCategory(tc.category))
		})
	}
}

func TestConfigFormat(t *testing.T) {
	item := ForItem("Telas Especiales")
	assert.Equal(t, "TEL01", item.Format(1))
	assert.Equal(t, "TEL99", item.Format(99))

	quo := ForQuotation()
	assert.Equal(t, "COT10001", quo.Format(10001))
}

func TestConfigMaxSuffix(t *testing.T) {
	assert.Equal(t, int64(99), ForItem("Telas").MaxSuffix())
	assert.Equal(t, int64(99999), ForQuotation().MaxSuffix())
}

func TestConfigParseSuffix(t *testing.T) {
	cfg := ForItem("Telas")

	n, ok := cfg.ParseSuffix("TEL07")
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	_, ok = cfg.ParseSuffix("ALG07")
	assert.False(t, ok, "foreign prefix must not parse")

	_, ok = cfg.ParseSuffix("TEL123")
	assert.False(t, ok, "wrong suffix width must not parse")

	_, ok = cfg.ParseSuffix("TELxx")
	assert.False(t, ok, "non-numeric suffix must not parse")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, ForItem("Telas").Validate())
	assert.NoError(t, ForQuotation().Validate())

	bad := Config{Prefix: "", SuffixWidth: 2}
	assert.Error(t, bad.Validate())

	badBase := Config{Prefix: "COT", SuffixWidth: 2, Base: 99}
	assert.Error(t, badBase.Validate())
}

func TestMockAllocatorSequences(t *testing.T) {
	m := &MockAllocator{}
	ctx := context.Background()

	code, err := m.NextCode(ctx, ForItem("Telas Especiales"))
	assert.NoError(t, err)
	assert.Equal(t, "TEL01", code)

	code, err = m.NextCode(ctx, ForItem("Telas Especiales"))
	assert.NoError(t, err)
	assert.Equal(t, "TEL02", code)

	code, err = m.NextCode(ctx, ForQuotation())
	assert.NoError(t, err)
	assert.Equal(t, "COT10001", code)
}
