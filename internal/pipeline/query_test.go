package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/salesdash/internal/config"
)

func TestApply(t *testing.T) {
	res := &LoadResult{Rows: sampleRows(), Channels: both}

	v, err := Apply(res, Query{From: 4, To: 2, Channels: []string{"meta"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fev", "Mar", "Abr"}, months(v.Rows))
	assert.Equal(t, []string{meta}, v.Channels)
	assert.Equal(t, 2, v.Query.From, "reversed bounds are swapped")

	v, err = Apply(res, Query{Months: []string{"fev", "abr"}, From: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Abr"}, months(v.Rows))
	assert.Equal(t, both, v.Channels)

	_, err = Apply(res, Query{Channels: []string{"radio"}})
	assert.Error(t, err)
}

func TestApply_ReversedRangeIsSwapped(t *testing.T) {
	res := &LoadResult{Rows: sampleRows(), Channels: both}

	v, err := Apply(res, Query{From: 3, To: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, v.Query.From)
	assert.Equal(t, 3, v.Query.To)
	assert.Equal(t, []string{"Fev", "Mar"}, months(v.Rows))

	// FilterByRange alone does not reorder its bounds.
	assert.Empty(t, FilterByRange(sampleRows(), 3, 2))
}

func TestParseBound(t *testing.T) {
	n, err := ParseBound("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = ParseBound("setembro")
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	_, err = ParseBound("Q3")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"jan", "fev", "mar"}, SplitList("jan, fev", "", " mar ,"))
	assert.Nil(t, SplitList())
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Currency.Code = "USD"
	cfg.General.Sheet = "Dados"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "Dados", opts.Sheet)
	assert.Equal(t, "VENDAS", opts.Source.RevenueColumn)
	assert.Equal(t, ",", opts.Source.Cleaner.Thousand)
	assert.Equal(t, ".", opts.Source.Cleaner.Decimal)
	assert.NotEqual(t, OptionsKey(opts), OptionsKey(OptionsFromConfig(config.DefaultConfig())))
}
