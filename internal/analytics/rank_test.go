package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/repository"
)

func line(id int64, name string, qty int64, status string) repository.OrderLine {
	return repository.OrderLine{ProductID: id, ProductName: name, Quantity: qty, Status: status}
}

func TestRankByQuantityExcludesPending(t *testing.T) {
	lines := []repository.OrderLine{
		line(1, "Pizza", 3, "Confirmado"),
		line(1, "Pizza", 2, "Entregue"),
		line(2, "Soda", 5, "Pendente"),
	}

	got := RankByQuantity(lines, Options{})
	assert.Equal(t, []Ranked{{Label: "Pizza", Metric: 5}}, got)
}

func TestRankByQuantityTruncatesAndSorts(t *testing.T) {
	var lines []repository.OrderLine
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	for i, n := range names {
		lines = append(lines, line(int64(i+1), n, int64(i+1), "Em Preparo"))
	}
	lines = append(lines, line(99, "Ghost", 100, "Recusado"))

	got := RankByQuantity(lines, Options{})
	require.Len(t, got, TopN)
	assert.Equal(t, "G", got[0].Label)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Metric, got[i].Metric)
	}
	for _, r := range got {
		assert.NotEqual(t, "Ghost", r.Label)
	}
}

func TestRankByQuantityTiesKeepFirstSeenOrder(t *testing.T) {
	lines := []repository.OrderLine{
		line(1, "Burger", 2, "A Caminho"),
		line(2, "Salad", 2, "Confirmado"),
		line(3, "Soup", 2, "Entregue"),
	}
	first := RankByQuantity(lines, Options{})
	second := RankByQuantity(lines, Options{})
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Burger", "Salad", "Soup"}, labels(first))
}

func TestRankByQuantityGroupByProductID(t *testing.T) {
	lines := []repository.OrderLine{
		line(1, "Pizza", 3, "Confirmado"),
		line(2, "Pizza", 4, "Confirmado"),
	}

	byName := RankByQuantity(lines, Options{GroupBy: GroupByName})
	assert.Equal(t, []Ranked{{Label: "Pizza", Metric: 7}}, byName)

	byID := RankByQuantity(lines, Options{GroupBy: GroupByProductID})
	assert.Equal(t, []Ranked{
		{Label: "Pizza", Metric: 4, ProductID: 2},
		{Label: "Pizza", Metric: 3, ProductID: 1},
	}, byID)
}

func TestRankByQuantityEmpty(t *testing.T) {
	got := RankByQuantity(nil, Options{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRankByViewsTruncates(t *testing.T) {
	var products []*repository.Product
	for i := 0; i < 8; i++ {
		products = append(products, &repository.Product{ID: int64(i + 1), Name: string(rune('A' + i)), Views: int64(100 - i)})
	}
	got := RankByViews(products)
	require.Len(t, got, TopN)
	assert.Equal(t, Ranked{Label: "A", Metric: 100, ProductID: 1}, got[0])
	assert.Equal(t, "E", got[4].Label)
}

func TestParseGroupBy(t *testing.T) {
	g, err := ParseGroupBy("")
	require.NoError(t, err)
	assert.Equal(t, GroupByName, g)

	g, err = ParseGroupBy("PRODUCT_ID")
	require.NoError(t, err)
	assert.Equal(t, GroupByProductID, g)

	_, err = ParseGroupBy("category")
	assert.Error(t, err)
}

func labels(rs []Ranked) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Label)
	}
	return out
}
