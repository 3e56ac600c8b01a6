package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/orderdesk/orderdesk/internal/chart"
	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/service"
)

// View 实现 tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	switch m.view {
	case ViewOrderDetail:
		return m.renderDetailView()
	case ViewAnalytics:
		return m.renderAnalyticsView()
	default:
		return m.renderOrderListView()
	}
}

func (m Model) renderStatusLine(b *strings.Builder) {
	if m.err != nil {
		b.WriteString(styleDanger.Render("  Error: " + friendlyError(m.err)))
		b.WriteString("\n\n")
	} else if m.notice != "" {
		b.WriteString(styleDone.Render("  " + m.notice))
		b.WriteString("\n\n")
	}
	if m.loading {
		b.WriteString(styleMuted().Render("  Loading..."))
		b.WriteString("\n\n")
	}
}

func (m Model) renderOrderListView() string {
	var b strings.Builder

	b.WriteString(styleHeader.Width(m.width).Render("  OrderDesk · Pedidos Recentes"))
	b.WriteString("\n\n")
	m.renderStatusLine(&b)

	// 表头
	tableHeader := fmt.Sprintf("  %-6s │ %-18s │ %-16s │ %-4s │ %-12s │ %s",
		"ID", "Product", "Customer", "Qty", "Status", "Progress")
	b.WriteString(styleTableHeader.Width(m.width).Render(tableHeader))
	b.WriteString("\n")
	b.WriteString(styleMuted().Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")

	if len(m.orders) == 0 {
		b.WriteString(styleMuted().Render("  No orders yet."))
		b.WriteString("\n")
	} else {
		// 按终端高度计算可见行数
		visibleRows := m.height - 12
		if visibleRows < 5 {
			visibleRows = 5
		}
		startIdx := 0
		if m.selectedOrder >= visibleRows {
			startIdx = m.selectedOrder - visibleRows + 1
		}
		endIdx := min(startIdx+visibleRows, len(m.orders))

		for i := startIdx; i < endIdx; i++ {
			b.WriteString(m.renderOrderRow(m.orders[i], i == m.selectedOrder))
			b.WriteString("\n")
		}
		if len(m.orders) > visibleRows {
			b.WriteString(styleMuted().Render(fmt.Sprintf("  Showing %d-%d of %d orders", startIdx+1, endIdx, len(m.orders))))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderSummary())
	b.WriteString("\n\n")
	b.WriteString(styleHelp.Render("  [↑/↓] Navigate  [Enter] Details  [←/→] Stage  [x] Reject  [Tab] Top 5  [r] Refresh  [q] Quit"))

	return b.String()
}

func (m Model) renderOrderRow(item service.OrderListItem, selected bool) string {
	row := fmt.Sprintf("  %-6d │ %-18s │ %-16s │ %-4d │ %s %-10s │ %s",
		item.ID,
		truncate(item.ProductName, 18),
		truncate(item.CustomerName, 16),
		item.Quantity,
		StageIcon(item.Status),
		truncate(item.Status, 10),
		ProgressBar(float64(item.Percent), 10),
	)
	if selected {
		return styleTableRowSelected.Width(m.width).Render("▶" + row[1:])
	}
	return styleTableRow.Render(row)
}

func (m Model) renderSummary() string {
	counts := make(map[string]int, len(order.Stages)+1)
	for _, o := range m.orders {
		counts[o.Status]++
	}
	parts := make([]string, 0, len(order.Stages)+1)
	for _, st := range append(order.Stages[:], order.StageRejected) {
		parts = append(parts, fmt.Sprintf("%s %s %d", StageIcon(string(st)), st, counts[string(st)]))
	}
	return "  " + strings.Join(parts, "  ") + fmt.Sprintf("  │  Total: %d", len(m.orders))
}

func (m Model) renderDetailView() string {
	var b strings.Builder

	title := "  Pedido"
	if m.detail != nil {
		title = fmt.Sprintf("  Pedido #%d", m.detail.Order.ID)
	}
	b.WriteString(styleHeader.Width(m.width).Render(title))
	b.WriteString("\n\n")
	m.renderStatusLine(&b)

	if m.detail == nil {
		b.WriteString(styleHelp.Render("  [Esc] Back  [q] Quit"))
		return b.String()
	}
	d := m.detail

	var info strings.Builder
	field := func(label, value string) {
		info.WriteString(styleLabel.Render(label))
		info.WriteString(styleValue.Render(value))
		info.WriteString("\n")
	}
	field("Product", d.Product.Name)
	field("Category", d.Product.Category)
	field("Price", d.Product.Price)
	field("Quantity", fmt.Sprintf("%d", d.Order.Quantity))
	field("Total", d.Product.Total)
	field("Customer", d.Customer.Name)
	field("Email", d.Customer.Email)
	field("Phone", d.Customer.Phone)
	field("Payment", d.Order.PaymentMethod)
	field("Created", d.Order.CreatedAt.Local().Format(time.DateTime))
	if desc := strings.TrimSpace(d.Product.Description); desc != "" {
		field("Description", truncate(desc, 60))
	}

	boxWidth := max(m.width-4, 40)
	b.WriteString(styleBox.Width(boxWidth).Render(strings.TrimRight(info.String(), "\n")))
	b.WriteString("\n\n")
	b.WriteString(styleDetailBox.Width(boxWidth).Render(renderProgress(d.Progress, boxWidth-8)))
	b.WriteString("\n\n")
	b.WriteString(styleHelp.Render("  [←] Previous  [→] Next  [x] Reject  [r] Refresh  [Esc] Back  [q] Quit"))

	return b.String()
}

// renderProgress draws the stage pipeline and the bar underneath it.
func renderProgress(p service.ProgressView, width int) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Progresso do Pedido"))
	b.WriteString("\n\n")

	if p.Rejected {
		b.WriteString(styleDanger.Render("✗ " + string(order.StageRejected)))
		b.WriteString("\n")
		b.WriteString(ProgressBar(0, width))
		return b.String()
	}

	labels := make([]string, 0, len(p.Stages))
	for i, st := range p.Stages {
		switch {
		case i < p.Index:
			labels = append(labels, styleDone.Render("✓ "+st))
		case i == p.Index:
			labels = append(labels, StageStyle(st).Underline(true).Render("● "+st))
		default:
			labels = append(labels, styleMuted().Render("○ "+st))
		}
	}
	b.WriteString(strings.Join(labels, styleMuted().Render(" → ")))
	b.WriteString("\n")
	b.WriteString(ProgressBar(float64(p.Percent), width))
	b.WriteString(fmt.Sprintf(" %d%%", p.Percent))
	return b.String()
}

func (m Model) renderAnalyticsView() string {
	var b strings.Builder

	b.WriteString(styleHeader.Width(m.width).Render("  Top 5"))
	b.WriteString("\n\n")
	m.renderStatusLine(&b)

	barWidth := max(m.width/2-24, 10)
	panel := func(title string, body string) string {
		if body == "" {
			body = styleMuted().Render("sem dados")
		}
		return styleBox.Render(styleTitle.Render(title) + "\n\n" + strings.TrimRight(body, "\n"))
	}
	left := panel(chart.OrderedStyle.Label, chart.Bars(m.ordered, barWidth))
	right := panel(chart.ViewsStyle.Label, chart.Bars(m.viewed, barWidth))

	if m.width >= 100 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	} else {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, left, right))
	}
	b.WriteString("\n\n")
	b.WriteString(styleHelp.Render("  [Tab/Esc] Back  [r] Refresh  [q] Quit"))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
