package transcript

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStoreRecent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.Save(ctx, Record{ConversationID: "c1", Role: RoleUser, Content: "hi"}))
	require.NoError(t, s.Save(ctx, Record{ConversationID: "c1", Role: RoleAssistant, Content: "Hello!", Interrupted: true}))
	require.NoError(t, s.Save(ctx, Record{ConversationID: "c2", Role: RoleUser, Content: "other"}))

	got, err := s.Recent(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hi", got[0].Content)
	assert.True(t, got[1].Interrupted)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())

	got, err = s.Recent(ctx, "c1", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hello!", got[0].Content)

	got, err = s.Recent(ctx, "missing", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewStoreWithoutDatabaseURL(t *testing.T) {
	s, err := NewStore(context.Background(), "  ")
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &InMemoryStore{}, s)
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	url := os.Getenv("NOVA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("NOVA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	conversation := uuid.NewString()
	require.NoError(t, s.Save(ctx, Record{ConversationID: conversation, TurnID: "t1", Role: RoleUser, Content: "namaste", Lang: "hinglish"}))
	require.NoError(t, s.Save(ctx, Record{ConversationID: conversation, TurnID: "t1", Role: RoleAssistant, Content: "Namaste!", Interrupted: true}))

	got, err := s.Recent(ctx, conversation, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, RoleUser, got[0].Role)
	assert.Equal(t, "hinglish", got[0].Lang)
	assert.True(t, got[1].Interrupted)
}
