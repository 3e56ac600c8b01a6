package chart

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/analytics"
)

func TestBarEmptyInput(t *testing.T) {
	s := Bar(nil, OrderedStyle)
	assert.True(t, s.Empty())

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"labels":[]`)
	assert.Contains(t, string(raw), `"data":[]`)
}

func TestBarMapsLabelsAndValues(t *testing.T) {
	s := Bar([]analytics.Ranked{{Label: "Pizza", Metric: 5}, {Label: "Soda", Metric: 2}}, ViewsStyle)
	assert.Equal(t, []string{"Pizza", "Soda"}, s.Labels)
	require.Len(t, s.Datasets, 1)
	assert.Equal(t, []int64{5, 2}, s.Datasets[0].Data)
	assert.Equal(t, "Visualizações", s.Datasets[0].Label)
	assert.Equal(t, 1, s.Datasets[0].BorderWidth)
}

func TestCompare(t *testing.T) {
	ordered := []analytics.Ranked{{Label: "Pizza", Metric: 5}}
	viewed := []analytics.Ranked{{Label: "Soda", Metric: 40}}

	c := Compare(ordered, viewed)
	assert.True(t, c.Ready)
	assert.Equal(t, []string{"Pizza"}, c.Labels)
	require.Len(t, c.Datasets, 2)
	assert.Equal(t, "Mais Pedidos", c.Datasets[0].Label)
	assert.Equal(t, "Mais Visualizados", c.Datasets[1].Label)
	assert.Equal(t, []int64{40}, c.Datasets[1].Data)

	assert.False(t, Compare(ordered, nil).Ready)
	assert.False(t, Compare(nil, viewed).Ready)
}

func TestBars(t *testing.T) {
	assert.Empty(t, Bars(nil, 10))

	out := Bars([]analytics.Ranked{{Label: "Pizza", Metric: 10}, {Label: "Tea", Metric: 5}}, 10)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, rows, 2)
	assert.Equal(t, 10, strings.Count(rows[0], "█"))
	assert.Equal(t, 5, strings.Count(rows[1], "█"))
	assert.True(t, strings.HasPrefix(rows[1], "Tea   │"))
}

func TestBarsNonPositiveMetrics(t *testing.T) {
	out := Bars([]analytics.Ranked{{Label: "Pizza", Metric: 5}, {Label: "Soda", Metric: -1}}, 30)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, rows, 2)
	assert.Equal(t, 30, strings.Count(rows[0], "█"))
	assert.Equal(t, 0, strings.Count(rows[1], "█"))
	assert.True(t, strings.HasSuffix(rows[1], "-1"))

	out = Bars([]analytics.Ranked{{Label: "Soda", Metric: -3}, {Label: "Tea", Metric: 0}}, 10)
	assert.Equal(t, 0, strings.Count(out, "█"))
}
