package messages

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	msg := New(RoleUser, "", "hello")

	assert.Equal(t, RoleUser, msg.Role)
	assert.Equal(t, TypeText, msg.Type)
	assert.Equal(t, "hello", msg.Content)
	assert.WithinDuration(t, time.Now(), time.Time(msg.CreatedAt), time.Second)

	id, err := uuid.Parse(msg.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNew_CustomType(t *testing.T) {
	msg := New(RoleAssistant, "todo-card", "")
	assert.Equal(t, "todo-card", msg.Type)
}

func TestNew_UniqueIDs(t *testing.T) {
	first := New(RoleUser, "", "a")
	second := New(RoleUser, "", "a")
	assert.NotEqual(t, first.ID, second.ID)
}
