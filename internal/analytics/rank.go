// 文件路径: internal/analytics/rank.go
// 模块说明: 仪表盘的 Top-N 聚合：按销量排行与按浏览量排行，都是纯函数。
package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/repository"
)

// TopN is the number of entries kept by every ranking.
const TopN = 5

// ActiveStatuses are the stages counted as real sales. Pending and rejected
// orders are excluded.
var ActiveStatuses = []string{
	string(order.StageConfirmed),
	string(order.StagePreparing),
	string(order.StageOnTheWay),
	string(order.StageDelivered),
}

// IsActive reports whether status belongs to ActiveStatuses.
func IsActive(status string) bool {
	for _, s := range ActiveStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// GroupBy selects the aggregation key of RankByQuantity.
type GroupBy string

const (
	// GroupByName merges distinct products that share a display name.
	GroupByName      GroupBy = "name"
	GroupByProductID GroupBy = "product_id"
)

// ParseGroupBy 解析配置中的分组方式，空值表示按名称。
func ParseGroupBy(raw string) (GroupBy, error) {
	switch GroupBy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", GroupByName:
		return GroupByName, nil
	case GroupByProductID:
		return GroupByProductID, nil
	default:
		return "", fmt.Errorf("unknown analytics group_by %q / 未知的分组方式", raw)
	}
}

// Ranked is one entry of a ranking. It is never persisted.
type Ranked struct {
	Label     string `json:"label"`
	Metric    int64  `json:"metric"`
	ProductID int64  `json:"product_id,omitempty"`
}

// Options tune RankByQuantity.
type Options struct {
	GroupBy GroupBy
	Limit   int // 0 = TopN
}

// RankByQuantity drops inactive lines, sums quantities per product and
// returns at most Limit entries sorted by quantity descending. Ties keep the
// order in which products first appeared.
func RankByQuantity(lines []repository.OrderLine, opts Options) []Ranked {
	limit := opts.Limit
	if limit <= 0 {
		limit = TopN
	}

	type bucket struct{ ranked Ranked }
	buckets := make(map[string]*bucket)
	seen := make([]*bucket, 0)

	for _, line := range lines {
		if !IsActive(line.Status) {
			continue
		}
		key := line.ProductName
		if opts.GroupBy == GroupByProductID {
			key = fmt.Sprintf("#%d", line.ProductID)
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{ranked: Ranked{Label: line.ProductName, ProductID: line.ProductID}}
			buckets[key] = b
			seen = append(seen, b)
		}
		b.ranked.Metric += line.Quantity
	}

	sort.SliceStable(seen, func(i, j int) bool {
		return seen[i].ranked.Metric > seen[j].ranked.Metric
	})

	if len(seen) > limit {
		seen = seen[:limit]
	}
	out := make([]Ranked, 0, len(seen))
	for _, b := range seen {
		r := b.ranked
		if opts.GroupBy != GroupByProductID {
			// 按名称合并时商品 ID 没有意义。
			r.ProductID = 0
		}
		out = append(out, r)
	}
	return out
}

// RankByViews keeps the first TopN products. The store already returns them
// sorted by views descending.
func RankByViews(products []*repository.Product) []Ranked {
	out := make([]Ranked, 0, TopN)
	for _, p := range products {
		if p == nil {
			continue
		}
		if len(out) == TopN {
			break
		}
		out = append(out, Ranked{Label: p.Name, Metric: p.Views, ProductID: p.ID})
	}
	return out
}
