package session_test

import (
	"testing"

	"needleshop/internal/models"
	"needleshop/internal/session"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	store := session.NewMemoryStore()

	_, err := store.Get("missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	sess := &session.Session{
		User:   models.User{ID: "user-1", Email: "a@example.com"},
		Orders: models.OrderList{{ID: "order-1"}},
	}
	assert.NoError(t, store.Put("token-1", sess))

	got, err := store.Get("token-1")
	assert.NoError(t, err)
	assert.Equal(t, "user-1", got.User.ID)
	assert.Len(t, got.Orders, 1)

	// The store keeps its own copy; the snapshot does not move with later
	// mutations of what the caller passed in.
	sess.Orders = append(sess.Orders, models.Order{ID: "order-2"})
	got, err = store.Get("token-1")
	assert.NoError(t, err)
	assert.Len(t, got.Orders, 1)

	assert.NoError(t, store.Delete("token-1"))
	_, err = store.Get("token-1")
	assert.ErrorIs(t, err, session.ErrNotFound)

	// Deleting twice is not an error.
	assert.NoError(t, store.Delete("token-1"))
}
