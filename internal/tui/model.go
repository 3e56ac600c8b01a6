package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/orderdesk/orderdesk/internal/analytics"
	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/service"
)

// ViewType 表示当前视图
type ViewType int

const (
	ViewOrderList   ViewType = iota // 订单列表
	ViewOrderDetail                 // 订单详情与进度条
	ViewAnalytics                   // 排行榜
)

// Services 终端面板使用的业务依赖，与 HTTP 接口共用同一套服务。
type Services struct {
	Orders    service.OrderQueryService
	Tracker   service.OrderTrackerService
	Analytics service.AnalyticsService
}

// Model 是主 TUI 模型
type Model struct {
	svc   Services
	scope service.Scope

	// 数据
	orders        []service.OrderListItem
	selectedOrder int
	detail        *service.OrderDetail
	ordered       []analytics.Ranked
	viewed        []analytics.Ranked

	// 视图状态
	view ViewType

	// 终端尺寸
	width  int
	height int

	// 状态
	loading bool
	err     error
	notice  string

	refreshEvery time.Duration

	// 按键绑定
	keys keyMap
}

// keyMap 定义全部按键绑定
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Back      key.Binding
	Advance   key.Binding
	Retreat   key.Binding
	Reject    key.Binding
	Analytics key.Binding
	Quit      key.Binding
	Refresh   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Advance: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next stage"),
		),
		Retreat: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "previous stage"),
		),
		Reject: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "reject"),
		),
		Analytics: key.NewBinding(
			key.WithKeys("tab", "a"),
			key.WithHelp("tab", "top 5"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}

// NewModel 创建新的 TUI 模型，scope 决定能看到哪家餐厅的订单。
func NewModel(svc Services, scope service.Scope) Model {
	return Model{
		svc:          svc,
		scope:        scope,
		view:         ViewOrderList,
		keys:         defaultKeyMap(),
		loading:      true,
		refreshEvery: 5 * time.Second,
	}
}

// Init 实现 tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadOrders(),
		m.tickCmd(),
	)
}

// 消息类型

type ordersLoadedMsg struct {
	orders []service.OrderListItem
}

type detailLoadedMsg struct {
	detail *service.OrderDetail
}

type analyticsLoadedMsg struct {
	ordered []analytics.Ranked
	viewed  []analytics.Ranked
}

type transitionMsg struct {
	result *service.TransitionResult
}

type errorMsg struct {
	err error
}

type tickMsg time.Time

// 命令

const listLimit = 50

func (m Model) loadOrders() tea.Cmd {
	return func() tea.Msg {
		items, err := m.svc.Orders.List(context.Background(), m.scope, service.OrderListInput{Limit: listLimit})
		if err != nil {
			return errorMsg{err: err}
		}
		return ordersLoadedMsg{orders: items}
	}
}

func (m Model) loadDetail(orderID int64) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.svc.Orders.Detail(context.Background(), m.scope, orderID)
		if err != nil {
			return errorMsg{err: err}
		}
		return detailLoadedMsg{detail: detail}
	}
}

func (m Model) loadAnalytics() tea.Cmd {
	return func() tea.Msg {
		if m.svc.Analytics == nil {
			return analyticsLoadedMsg{}
		}
		ctx := context.Background()
		ordered, err := m.svc.Analytics.TopOrdered(ctx, m.scope)
		if err != nil {
			return errorMsg{err: err}
		}
		viewed, err := m.svc.Analytics.TopViewed(ctx, m.scope)
		if err != nil {
			return errorMsg{err: err}
		}
		return analyticsLoadedMsg{ordered: ordered, viewed: viewed}
	}
}

func (m Model) applyAction(orderID int64, action order.Action) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.Tracker.Apply(context.Background(), m.scope, orderID, action)
		if err != nil {
			return errorMsg{err: err}
		}
		return transitionMsg{result: res}
	}
}

func (m Model) tickCmd() tea.Cmd {
	if m.refreshEvery <= 0 {
		return nil
	}
	return tea.Tick(m.refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// currentOrderID 返回列表选中或详情中的订单。
func (m Model) currentOrderID() (int64, bool) {
	if m.view == ViewOrderDetail && m.detail != nil {
		return m.detail.Order.ID, true
	}
	if m.view == ViewOrderList && len(m.orders) > 0 {
		return m.orders[m.selectedOrder].ID, true
	}
	return 0, false
}
