package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkup-service/internal/models"
)

// edgeSet is a FollowChecker backed by a fixed set of directed edges.
type edgeSet map[[2]int]bool

func (e edgeSet) EitherFollows(ctx context.Context, userA, userB int) (bool, error) {
	return e[[2]int{userA, userB}] || e[[2]int{userB, userA}], nil
}

func TestCanParticipateEitherDirectionSuffices(t *testing.T) {
	room := models.ChatRoom{ID: 1, User1ID: 3, User2ID: 7}

	tests := []struct {
		name  string
		edges edgeSet
		user  int
		want  bool
	}{
		{"user follows other", edgeSet{{3, 7}: true}, 3, true},
		{"other follows user", edgeSet{{7, 3}: true}, 3, true},
		{"no edge at all", edgeSet{}, 3, false},
		{"counterpart side sees the same edge", edgeSet{{3, 7}: true}, 7, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CanParticipate(context.Background(), tc.edges, room, tc.user)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCanParticipateFailsClosedForOutsiders(t *testing.T) {
	room := models.ChatRoom{ID: 1, User1ID: 3, User2ID: 7}

	// Edges to both participants do not help a user who is not in the room.
	edges := edgeSet{{9, 3}: true, {9, 7}: true, {3, 9}: true}

	got, err := CanParticipate(context.Background(), edges, room, 9)
	require.NoError(t, err)
	assert.False(t, got)
}
