package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowdeck/collab/internal/domain"
)

func TestTaskStatusValid(t *testing.T) {
	t.Parallel()

	valid := []domain.TaskStatus{
		domain.TaskStatusTodo,
		domain.TaskStatusInProgress,
		domain.TaskStatusReview,
		domain.TaskStatusDone,
		domain.TaskStatusBlocked,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %q to be valid", s)
	}

	invalid := []domain.TaskStatus{"", "archived", "TODO", "in-progress"}
	for _, s := range invalid {
		assert.False(t, s.Valid(), "expected %q to be invalid", s)
	}
}

func TestTaskPriorityValid(t *testing.T) {
	t.Parallel()

	valid := []domain.TaskPriority{
		domain.TaskPriorityLow,
		domain.TaskPriorityMedium,
		domain.TaskPriorityHigh,
		domain.TaskPriorityUrgent,
	}
	for _, p := range valid {
		assert.True(t, p.Valid(), "expected %q to be valid", p)
	}

	assert.False(t, domain.TaskPriority("critical").Valid())
	assert.False(t, domain.TaskPriority("").Valid())
}

func TestTaskApply(t *testing.T) {
	t.Parallel()

	base := func() *domain.Task {
		points := 3
		return &domain.Task{
			ID:          uuid.New(),
			BoardID:     uuid.New(),
			Title:       "Ship the sync service",
			Description: "original description",
			Status:      domain.TaskStatusTodo,
			Priority:    domain.TaskPriorityMedium,
			Labels:      []string{"backend"},
			StoryPoints: &points,
		}
	}

	t.Run("status only patch leaves other fields untouched", func(t *testing.T) {
		t.Parallel()

		task := base()
		done := domain.TaskStatusDone
		task.Apply(&domain.TaskPatch{Status: &done})

		assert.Equal(t, domain.TaskStatusDone, task.Status)
		assert.Equal(t, "Ship the sync service", task.Title)
		assert.Equal(t, "original description", task.Description)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		require.NotNil(t, task.StoryPoints)
		assert.Equal(t, 3, *task.StoryPoints)
	})

	t.Run("multi-field patch merges all supplied fields", func(t *testing.T) {
		t.Parallel()

		task := base()
		title := "New title"
		urgent := domain.TaskPriorityUrgent
		labels := []string{"backend", "realtime"}
		due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		task.Apply(&domain.TaskPatch{
			Title:    &title,
			Priority: &urgent,
			Labels:   &labels,
			DueDate:  &due,
		})

		assert.Equal(t, "New title", task.Title)
		assert.Equal(t, domain.TaskPriorityUrgent, task.Priority)
		assert.Equal(t, []string{"backend", "realtime"}, task.Labels)
		require.NotNil(t, task.DueDate)
		assert.True(t, due.Equal(*task.DueDate))
		// Untouched fields survive.
		assert.Equal(t, "original description", task.Description)
		assert.Equal(t, domain.TaskStatusTodo, task.Status)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		t.Parallel()

		task := base()
		before := *task
		p := &domain.TaskPatch{}
		assert.True(t, p.IsZero())
		task.Apply(p)
		assert.Equal(t, before.Title, task.Title)
		assert.Equal(t, before.Status, task.Status)
		assert.Equal(t, before.Priority, task.Priority)
	})

	t.Run("patch does not alias caller memory", func(t *testing.T) {
		t.Parallel()

		task := base()
		labels := []string{"a"}
		task.Apply(&domain.TaskPatch{Labels: &labels})
		labels[0] = "mutated"
		assert.Equal(t, []string{"a"}, task.Labels)
	})
}

func TestTaskClone(t *testing.T) {
	t.Parallel()

	points := 5
	assignee := uuid.New()
	due := time.Now().Add(24 * time.Hour)
	orig := &domain.Task{
		ID:          uuid.New(),
		Title:       "clone me",
		Status:      domain.TaskStatusReview,
		Priority:    domain.TaskPriorityHigh,
		AssignedTo:  &assignee,
		Labels:      []string{"x", "y"},
		StoryPoints: &points,
		DueDate:     &due,
	}

	c := orig.Clone()
	require.Equal(t, orig.ID, c.ID)
	require.Equal(t, orig.Title, c.Title)

	// Mutating the clone must not leak into the original.
	*c.StoryPoints = 8
	c.Labels[0] = "z"
	*c.AssignedTo = uuid.New()

	assert.Equal(t, 5, *orig.StoryPoints)
	assert.Equal(t, "x", orig.Labels[0])
	assert.Equal(t, assignee, *orig.AssignedTo)
}
