package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quildacademy/quild-backend/internal/data/repos/testutil"
	types "github.com/quildacademy/quild-backend/internal/domain"
	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
)

func TestCatalog_InactivePhaseHidesDescendants(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	cur := testutil.SeedCurriculum(t, ctx, e.db, [][]int{{1}, {1}})
	hidden := cur.Phases[0]
	require.NoError(t, e.db.Model(&types.Phase{}).Where("id = ?", hidden.ID).Update("is_active", false).Error)

	weeks, err := e.catalog.ListWeeks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, weeks, 1)
	assert.Equal(t, cur.Weeks[1][0].ID, weeks[0].ID)

	weeks, err = e.catalog.ListWeeks(ctx, &hidden.ID)
	require.NoError(t, err)
	assert.Empty(t, weeks)

	lessons, err := e.catalog.ListLessons(ctx, nil, &hidden.ID)
	require.NoError(t, err)
	assert.Empty(t, lessons)

	_, err = e.catalog.GetLesson(ctx, uuid.Nil, cur.Lesson(0, 0, 0).ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)

	view, err := e.catalog.GetLesson(ctx, uuid.Nil, cur.Lesson(1, 0, 0).ID)
	require.NoError(t, err)
	require.NotNil(t, view.Week)
	require.NotNil(t, view.Phase)
	assert.Equal(t, cur.Phases[1].ID, view.Phase.ID)
	assert.False(t, view.Completed)
}

func TestCatalog_GetLessonInactiveWeek(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	cur := testutil.SeedCurriculum(t, ctx, e.db, [][]int{{1, 1}})
	require.NoError(t, e.db.Model(&types.Week{}).Where("id = ?", cur.Weeks[0][1].ID).Update("is_active", false).Error)

	_, err := e.catalog.GetLesson(ctx, uuid.Nil, cur.Lesson(0, 1, 0).ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)

	_, err = e.catalog.GetLesson(ctx, uuid.Nil, cur.Lesson(0, 0, 0).ID)
	require.NoError(t, err)
}
