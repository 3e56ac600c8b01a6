package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/service"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ordersLoadedMsg:
		m.loading = false
		m.orders = msg.orders
		m.err = nil
		if m.selectedOrder >= len(m.orders) {
			m.selectedOrder = max(len(m.orders)-1, 0)
		}
		return m, nil

	case detailLoadedMsg:
		m.loading = false
		m.detail = msg.detail
		m.err = nil
		return m, nil

	case analyticsLoadedMsg:
		m.loading = false
		m.ordered = msg.ordered
		m.viewed = msg.viewed
		m.err = nil
		return m, nil

	case transitionMsg:
		m.err = nil
		if msg.result.Changed {
			m.notice = fmt.Sprintf("#%d %s → %s", msg.result.OrderID, msg.result.From, msg.result.To)
		} else {
			m.notice = fmt.Sprintf("#%d already at %s", msg.result.OrderID, msg.result.To)
		}
		// 刷新列表与详情，进度条以存储中的状态为准。
		cmds := []tea.Cmd{m.loadOrders()}
		if m.view == ViewOrderDetail {
			cmds = append(cmds, m.loadDetail(msg.result.OrderID))
		}
		return m, tea.Batch(cmds...)

	case errorMsg:
		m.loading = false
		m.err = msg.err
		m.notice = ""
		return m, nil

	case tickMsg:
		// Auto refresh based on current view
		switch m.view {
		case ViewOrderList:
			return m, tea.Batch(m.loadOrders(), m.tickCmd())
		case ViewOrderDetail:
			if m.detail != nil {
				return m, tea.Batch(m.loadDetail(m.detail.Order.ID), m.tickCmd())
			}
		case ViewAnalytics:
			return m, tea.Batch(m.loadAnalytics(), m.tickCmd())
		}
		return m, m.tickCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		return m.move(-1)

	case key.Matches(msg, m.keys.Down):
		return m.move(1)

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	case key.Matches(msg, m.keys.Back):
		return m.handleBack()

	case key.Matches(msg, m.keys.Advance):
		return m.handleAction(order.ActionAdvance)

	case key.Matches(msg, m.keys.Retreat):
		return m.handleAction(order.ActionRetreat)

	case key.Matches(msg, m.keys.Reject):
		return m.handleAction(order.ActionReject)

	case key.Matches(msg, m.keys.Analytics):
		return m.toggleAnalytics()

	case key.Matches(msg, m.keys.Refresh):
		return m.handleRefresh()
	}

	return m, nil
}

func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	if m.view != ViewOrderList || len(m.orders) == 0 {
		return m, nil
	}
	m.selectedOrder = (m.selectedOrder + delta + len(m.orders)) % len(m.orders)
	return m, nil
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.view != ViewOrderList || len(m.orders) == 0 {
		return m, nil
	}
	m.view = ViewOrderDetail
	m.detail = nil
	m.notice = ""
	m.loading = true
	return m, m.loadDetail(m.orders[m.selectedOrder].ID)
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	switch m.view {
	case ViewOrderDetail, ViewAnalytics:
		m.view = ViewOrderList
		m.detail = nil
		m.notice = ""
		return m, m.loadOrders()
	}
	return m, nil
}

// handleAction 在本地先判断边界，避免对已拒绝订单发起必然失败的请求。
func (m Model) handleAction(action order.Action) (tea.Model, tea.Cmd) {
	id, ok := m.currentOrderID()
	if !ok || m.svc.Tracker == nil {
		return m, nil
	}
	if m.view == ViewOrderDetail && m.detail != nil && action != order.ActionReject {
		if m.detail.Progress.Rejected {
			m.err = service.ErrRejected
			return m, nil
		}
	}
	m.err = nil
	return m, m.applyAction(id, action)
}

func (m Model) toggleAnalytics() (tea.Model, tea.Cmd) {
	if m.view == ViewAnalytics {
		return m.handleBack()
	}
	m.view = ViewAnalytics
	m.loading = true
	return m, m.loadAnalytics()
}

func (m Model) handleRefresh() (tea.Model, tea.Cmd) {
	m.loading = true
	switch m.view {
	case ViewOrderDetail:
		if m.detail != nil {
			return m, m.loadDetail(m.detail.Order.ID)
		}
	case ViewAnalytics:
		return m, m.loadAnalytics()
	}
	return m, m.loadOrders()
}

// friendlyError 把业务错误转成简短的一行提示。
func friendlyError(err error) string {
	switch {
	case errors.Is(err, service.ErrRejected):
		return "order was rejected and cannot change stage"
	case errors.Is(err, service.ErrNotFound):
		return "order not found"
	case errors.Is(err, service.ErrStoreUpdate):
		return "could not save the status, nothing changed"
	default:
		return err.Error()
	}
}
