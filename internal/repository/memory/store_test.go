package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orderdesk/orderdesk/internal/repository/repotest"
)

func TestStoreBehaviour(t *testing.T) {
	repotest.Run(t, NewStore())
}

func TestFailUpdates(t *testing.T) {
	s := NewStore()
	f := repotest.Seed(t, s)
	boom := errors.New("offline")
	s.SetFailUpdates(boom)

	err := s.Orders().UpdateStatus(context.Background(), f.OrderIDs[0], "Entregue", 1)
	assert.ErrorIs(t, err, boom)
	o, _ := s.Orders().FindByID(context.Background(), f.OrderIDs[0])
	assert.Equal(t, "Confirmado", o.Status)
}
