package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int
		level  int
	}{
		{-50, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{500, 4},
		{1000, 5},
		{2000, 6},
		{3500, 7},
		{5500, 8},
		{8000, 9},
		{11000, 10},
		{15999, 10},
		{16000, 11},
		{21000, 12},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, LevelForPoints(tc.points), "points=%d", tc.points)
	}
}

func TestLevelForPointsMonotonic(t *testing.T) {
	prev := LevelForPoints(0)
	for p := 1; p <= 30000; p += 7 {
		level := LevelForPoints(p)
		require.GreaterOrEqual(t, level, prev, "level regressed at %d points", p)
		prev = level
	}
}

func TestPointsToNextLevel(t *testing.T) {
	assert.Equal(t, 100, PointsToNextLevel(0))
	assert.Equal(t, 1, PointsToNextLevel(99))
	assert.Equal(t, 150, PointsToNextLevel(100))
	// Past the threshold table levels come in fixed blocks.
	assert.Equal(t, 5000, PointsToNextLevel(11000))
	assert.Equal(t, 1, PointsToNextLevel(15999))
}

func TestAwardPoints(t *testing.T) {
	svc, pub := newTestService(t)
	user := createUser(t, svc, "alice")

	result, err := svc.AwardPoints(context.Background(), user.ID, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, result.Points)
	assert.Equal(t, 1, result.Level)
	assert.False(t, result.LeveledUp)

	result, err = svc.AwardPoints(context.Background(), user.ID, 70)
	require.NoError(t, err)
	assert.Equal(t, 110, result.Points)
	assert.Equal(t, 2, result.Level)
	assert.True(t, result.LeveledUp)

	stored := reloadUser(t, svc, user.ID)
	assert.Equal(t, 110, stored.Points)
	assert.Equal(t, 2, stored.Level)

	// Each successful award pushes a stats update.
	assert.Len(t, pub.eventsFor(user.ID, EventStatsUpdate), 2)
}

func TestAwardPointsInvalidDelta(t *testing.T) {
	svc, _ := newTestService(t)
	user := createUser(t, svc, "alice")

	for _, delta := range []int{0, -10} {
		_, err := svc.AwardPoints(context.Background(), user.ID, delta)
		assert.ErrorIs(t, err, ErrInvalidDelta, "delta=%d", delta)
	}

	stored := reloadUser(t, svc, user.ID)
	assert.Equal(t, 0, stored.Points)
}

func TestAwardPointsUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AwardPoints(context.Background(), 9999, 10)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
