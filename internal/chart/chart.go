// 文件路径: internal/chart/chart.go
// 模块说明: 把排行结果转换成前端图表库可以直接使用的 {labels, datasets} 结构。
package chart

import (
	"fmt"
	"strings"

	"github.com/orderdesk/orderdesk/internal/analytics"
)

// Style 数据集的颜色配置。
type Style struct {
	Label           string
	BackgroundColor string
	BorderColor     string
	BorderWidth     int
}

var (
	// OrderedStyle 销量柱状图。
	OrderedStyle = Style{Label: "Quantidade Vendida", BackgroundColor: "rgba(75, 192, 192, 0.2)", BorderColor: "rgba(75, 192, 192, 1)", BorderWidth: 1}

	// ViewsStyle 浏览量柱状图。
	ViewsStyle = Style{Label: "Visualizações", BackgroundColor: "rgba(255, 99, 132, 0.2)", BorderColor: "rgba(255, 99, 132, 1)", BorderWidth: 1}

	comparisonOrdered = Style{Label: "Mais Pedidos", BackgroundColor: "rgba(75, 192, 192, 0.5)", BorderColor: "rgba(75, 192, 192, 1)", BorderWidth: 1}
	comparisonViewed  = Style{Label: "Mais Visualizados", BackgroundColor: "rgba(153, 102, 255, 0.5)", BorderColor: "rgba(153, 102, 255, 1)", BorderWidth: 1}
)

// Dataset is one series of a chart.
type Dataset struct {
	Label           string  `json:"label"`
	Data            []int64 `json:"data"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderColor     string  `json:"borderColor"`
	BorderWidth     int     `json:"borderWidth"`
}

// Series is the chart payload: labels plus one or more datasets.
type Series struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Empty reports whether the series has no points.
func (s Series) Empty() bool { return len(s.Labels) == 0 }

// Bar converts a ranking into a single-dataset series. Nil input gives empty
// (non-nil) labels and data.
func Bar(ranked []analytics.Ranked, style Style) Series {
	labels := make([]string, 0, len(ranked))
	data := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		labels = append(labels, r.Label)
		data = append(data, r.Metric)
	}
	return Series{
		Labels:   labels,
		Datasets: []Dataset{dataset(style, data)},
	}
}

// Comparison places the most-ordered and most-viewed rankings side by side.
// Labels come from the ordered ranking; views are taken positionally, as the
// dashboard has always drawn them.
type Comparison struct {
	Series
	// Ready is false when either ranking is empty and the chart must not be drawn.
	Ready bool `json:"ready"`
}

// Compare builds the two-dataset comparison chart.
func Compare(ordered, viewed []analytics.Ranked) Comparison {
	labels := make([]string, 0, len(ordered))
	orderedData := make([]int64, 0, len(ordered))
	viewedData := make([]int64, 0, len(viewed))
	for _, r := range ordered {
		labels = append(labels, r.Label)
		orderedData = append(orderedData, r.Metric)
	}
	for _, r := range viewed {
		viewedData = append(viewedData, r.Metric)
	}
	return Comparison{
		Series: Series{
			Labels: labels,
			Datasets: []Dataset{
				dataset(comparisonOrdered, orderedData),
				dataset(comparisonViewed, viewedData),
			},
		},
		Ready: len(ordered) > 0 && len(viewed) > 0,
	}
}

func dataset(style Style, data []int64) Dataset {
	return Dataset{
		Label:           style.Label,
		Data:            data,
		BackgroundColor: style.BackgroundColor,
		BorderColor:     style.BorderColor,
		BorderWidth:     style.BorderWidth,
	}
}

// Bars renders a ranking as horizontal text bars for terminals. Non-positive
// metrics draw an empty bar.
func Bars(ranked []analytics.Ranked, width int) string {
	if len(ranked) == 0 {
		return ""
	}
	if width <= 0 {
		width = 30
	}
	var top int64
	labelWidth := 0
	for _, r := range ranked {
		if r.Metric > top {
			top = r.Metric
		}
		if n := len([]rune(r.Label)); n > labelWidth {
			labelWidth = n
		}
	}

	var b strings.Builder
	for _, r := range ranked {
		filled := 0
		if top > 0 && r.Metric > 0 {
			filled = int(r.Metric * int64(width) / top)
		}
		filled = min(filled, width)
		pad := labelWidth - len([]rune(r.Label))
		fmt.Fprintf(&b, "%s%s │%s %d\n", r.Label, strings.Repeat(" ", pad), strings.Repeat("█", filled), r.Metric)
	}
	return b.String()
}
