package event

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/support/logging"
)

func sample(restaurantID int64, to string) StatusChanged {
	return StatusChanged{
		EventID:      "evt-1",
		OrderID:      42,
		RestaurantID: restaurantID,
		Action:       "advance",
		From:         "Confirmado",
		To:           to,
		Actor:        "admin@example.com",
		OccurredAt:   time.Unix(1700000000, 0).UTC(),
	}
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "order.status.em_preparo", sample(1, "Em Preparo").RoutingKey())
	assert.Equal(t, "order.status.recusado", sample(1, "Recusado").RoutingKey())
	assert.Equal(t, "order.status.unknown", sample(1, "").RoutingKey())
}

func TestMultiJoinsErrors(t *testing.T) {
	var calls int
	ok := PublisherFunc(func(context.Context, StatusChanged) error { calls++; return nil })
	boom := errors.New("boom")
	failing := PublisherFunc(func(context.Context, StatusChanged) error { calls++; return boom })

	err := Multi{failing, nil, ok, LogPublisher{Logger: logging.Discard()}}.Publish(context.Background(), sample(1, "Entregue"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
	assert.NoError(t, Multi{ok}.Publish(context.Background(), sample(1, "Entregue")))
}

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	failWith  error
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitPublisher(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewRabbitPublisher(ch, "orderdesk.orders", logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, []string{"orderdesk.orders:topic"}, ch.declared)

	require.NoError(t, p.Publish(context.Background(), sample(7, "A Caminho")))
	require.Len(t, ch.published, 1)
	assert.Equal(t, []string{"orderdesk.orders/order.status.a_caminho"}, ch.keys)
	assert.Equal(t, "evt-1", ch.published[0].MessageId)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var decoded StatusChanged
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, int64(7), decoded.RestaurantID)

	ch.failWith = errors.New("channel closed")
	assert.Error(t, p.Publish(context.Background(), sample(7, "Entregue")))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestNewRabbitPublisherValidates(t *testing.T) {
	_, err := NewRabbitPublisher(nil, "x", nil)
	assert.Error(t, err)
	_, err = NewRabbitPublisher(&fakeChannel{}, "", nil)
	assert.Error(t, err)
}

func TestHubBroadcastsPerRestaurant(t *testing.T) {
	hub := NewHub(logging.Discard(), HubOptions{})
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := int64(1)
		if r.URL.Query().Get("r") == "2" {
			id = 2
		}
		_ = hub.Serve(w, r, id)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	mine, _, err := websocket.DefaultDialer.Dial(wsURL+"?r=1", nil)
	require.NoError(t, err)
	defer mine.Close()
	other, _, err := websocket.DefaultDialer.Dial(wsURL+"?r=2", nil)
	require.NoError(t, err)
	defer other.Close()

	require.Eventually(t, func() bool { return hub.Clients(1) == 1 && hub.Clients(2) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), sample(1, "Em Preparo")))

	var got StatusChanged
	require.NoError(t, mine.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, mine.ReadJSON(&got))
	assert.Equal(t, "Em Preparo", got.To)
	assert.Equal(t, int64(42), got.OrderID)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	hub := NewHub(logging.Discard(), HubOptions{AllowedOrigins: []string{"https://dash.example.com"}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 1)
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
