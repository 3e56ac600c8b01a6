package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/repository/memory"
	"github.com/orderdesk/orderdesk/internal/repository/repotest"
	"github.com/orderdesk/orderdesk/internal/service"
)

func newTestModel(t *testing.T) (Model, repotest.Fixture) {
	t.Helper()
	store := memory.NewStore()
	fx := repotest.Seed(t, store)

	tracker, err := service.NewOrderTrackerService(service.OrderTrackerOptions{Store: store})
	require.NoError(t, err)
	analyticsSvc, err := service.NewAnalyticsService(service.AnalyticsOptions{Store: store})
	require.NoError(t, err)

	m := NewModel(Services{
		Orders:    service.NewOrderQueryService(store),
		Tracker:   tracker,
		Analytics: analyticsSvc,
	}, service.Scope{RestaurantID: fx.RestaurantID, Email: "tui"})
	m.refreshEvery = 0
	return m, fx
}

// drive feeds msg into the model and runs the resulting commands
// synchronously until none are left.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next, cmd := m.Update(queue[0])
		queue = queue[1:]
		m = next.(Model)
		queue = append(queue, run(cmd)...)
	}
	return m
}

func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, run(c)...)
		}
		return out
	case tea.QuitMsg:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func selectOrder(t *testing.T, m Model, id int64) Model {
	t.Helper()
	for i, o := range m.orders {
		if o.ID == id {
			m.selectedOrder = i
			return m
		}
	}
	t.Fatalf("order %d not listed", id)
	return m
}

func TestListLoads(t *testing.T) {
	m, _ := newTestModel(t)
	m = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drive(t, m, run(m.loadOrders())[0])

	assert.Len(t, m.orders, 4)
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "Pizza")
}

func TestDetailAdvanceAndRetreat(t *testing.T) {
	m, fx := newTestModel(t)
	m = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drive(t, m, run(m.loadOrders())[0])
	m = selectOrder(t, m, fx.OrderIDs[0])

	m = drive(t, m, keyMsg("enter"))
	require.Equal(t, ViewOrderDetail, m.view)
	require.NotNil(t, m.detail)
	assert.Equal(t, "Confirmado", m.detail.Progress.Stage)

	m = drive(t, m, keyMsg("right"))
	assert.Equal(t, "Em Preparo", m.detail.Progress.Stage)
	assert.Equal(t, 60, m.detail.Progress.Percent)
	assert.Contains(t, m.notice, "Em Preparo")

	m = drive(t, m, keyMsg("left"))
	m = drive(t, m, keyMsg("left"))
	m = drive(t, m, keyMsg("left"))
	assert.Equal(t, "Pendente", m.detail.Progress.Stage)
	assert.Contains(t, m.notice, "already at")
	assert.Contains(t, m.View(), "Progresso do Pedido")
}

func TestRejectThenAdvanceShowsError(t *testing.T) {
	m, fx := newTestModel(t)
	m = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = drive(t, m, run(m.loadOrders())[0])
	m = selectOrder(t, m, fx.OrderIDs[2])

	m = drive(t, m, keyMsg("enter"))
	m = drive(t, m, keyMsg("x"))
	require.True(t, m.detail.Progress.Rejected)

	m = drive(t, m, keyMsg("right"))
	assert.ErrorIs(t, m.err, service.ErrRejected)
	assert.Contains(t, m.View(), "rejected")
}

func TestAnalyticsView(t *testing.T) {
	m, _ := newTestModel(t)
	m = drive(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m = drive(t, m, keyMsg("tab"))
	require.Equal(t, ViewAnalytics, m.view)
	require.Len(t, m.ordered, 1)
	require.Len(t, m.viewed, 3)
	assert.Contains(t, m.View(), "Soda")

	m = drive(t, m, keyMsg("esc"))
	assert.Equal(t, ViewOrderList, m.view)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Pizza", truncate("Pizza", 10))
	assert.Equal(t, "Marga...", truncate("Margherita", 8))
}
