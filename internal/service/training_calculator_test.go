package service

import (
	"hr_training_backend/internal/model"
	"hr_training_backend/internal/util"
	"testing"
	"time"
)

func assignmentWith(status model.AssignmentStatus, duration int) *model.TrainingAssignment {
	return &model.TrainingAssignment{
		Status: status,
		Module: model.TrainingModule{Duration: duration},
	}
}

func sessions(minutes ...int) []model.TrainingProgress {
	out := make([]model.TrainingProgress, 0, len(minutes))
	for _, m := range minutes {
		out = append(out, model.TrainingProgress{TimeSpentMinutes: m})
	}
	return out
}

func TestCalculateProgress(t *testing.T) {
	cases := []struct {
		name     string
		status   model.AssignmentStatus
		duration int
		sessions []model.TrainingProgress
		want     int
	}{
		{"completed ignores minutes", model.AssignmentCompleted, 60, sessions(1), 100},
		{"in progress half duration", model.AssignmentInProgress, 60, sessions(30), 48},
		{"minutes summed across sessions", model.AssignmentInProgress, 60, sessions(10, 20), 48},
		{"capped below completion", model.AssignmentInProgress, 60, sessions(200), 95},
		{"in progress floor", model.AssignmentInProgress, 60, sessions(1), 15},
		{"unlocked floor", model.AssignmentUnlocked, 600, sessions(1), 5},
		{"assigned has no floor", model.AssignmentAssigned, 60, sessions(6), 10},
		{"zero duration in progress with rows", model.AssignmentInProgress, 0, sessions(30), 15},
		{"zero minutes unlocked with rows", model.AssignmentUnlocked, 60, sessions(0), 5},
		{"rows without minutes assigned", model.AssignmentAssigned, 60, sessions(0), 5},
		{"no rows unlocked", model.AssignmentUnlocked, 60, nil, 5},
		{"no rows in progress", model.AssignmentInProgress, 60, nil, 15},
		{"no rows assigned", model.AssignmentAssigned, 60, nil, 0},
		{"no rows overdue", model.AssignmentOverdue, 60, nil, 0},
		{"huge minutes saturate", model.AssignmentInProgress, 60, sessions(util.MaxTrainingMinutes, util.MaxTrainingMinutes), 95},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateProgress(assignmentWith(tc.status, tc.duration), tc.sessions)
			if got != tc.want {
				t.Fatalf("progress: want=%d got=%d", tc.want, got)
			}
		})
	}
}

func TestIsOverdue(t *testing.T) {
	yesterday := testNow.Add(-24 * time.Hour)
	tomorrow := testNow.Add(24 * time.Hour)

	a := assignmentWith(model.AssignmentAssigned, 60)
	if IsOverdue(a, testNow) {
		t.Fatalf("nil due date must not be overdue")
	}

	a.DueDate = &yesterday
	if !IsOverdue(a, testNow) {
		t.Fatalf("past due date: want overdue")
	}

	a.Status = model.AssignmentCompleted
	if IsOverdue(a, testNow) {
		t.Fatalf("completed assignment must not be overdue")
	}

	a.Status = model.AssignmentInProgress
	a.DueDate = &tomorrow
	if IsOverdue(a, testNow) {
		t.Fatalf("future due date must not be overdue")
	}
}

func TestCanUnlock(t *testing.T) {
	yesterday := testNow.Add(-24 * time.Hour)

	cases := []struct {
		status model.AssignmentStatus
		due    *time.Time
		want   bool
	}{
		{model.AssignmentAssigned, nil, true},
		{model.AssignmentOverdue, nil, true},
		{model.AssignmentOverdue, &yesterday, true},
		{model.AssignmentAssigned, &yesterday, false},
		{model.AssignmentUnlocked, nil, false},
		{model.AssignmentInProgress, nil, false},
		{model.AssignmentCompleted, nil, false},
		{model.AssignmentRemoved, nil, false},
	}

	for _, tc := range cases {
		a := assignmentWith(tc.status, 60)
		a.DueDate = tc.due
		if got := CanUnlock(a, testNow); got != tc.want {
			t.Fatalf("CanUnlock(%s, due=%v): want=%v got=%v", tc.status, tc.due, tc.want, got)
		}
	}
}

func TestCalculateEmployeeStatsEmpty(t *testing.T) {
	stats := CalculateEmployeeStats(nil, testNow)
	if stats.TotalAssigned != 0 || stats.CompletionRate != 0 {
		t.Fatalf("empty stats: want zero got=%+v", stats)
	}
}

func TestCalculateEmployeeStats(t *testing.T) {
	yesterday := testNow.Add(-24 * time.Hour)

	overdueAssigned := *assignmentWith(model.AssignmentAssigned, 60)
	overdueAssigned.DueDate = &yesterday

	assignments := []model.TrainingAssignment{
		*assignmentWith(model.AssignmentCompleted, 60),
		*assignmentWith(model.AssignmentInProgress, 60),
		overdueAssigned,
		*assignmentWith(model.AssignmentOverdue, 60),
		*assignmentWith(model.AssignmentUnlocked, 60),
	}

	stats := CalculateEmployeeStats(assignments, testNow)

	if stats.TotalAssigned != 5 {
		t.Fatalf("total: want=5 got=%d", stats.TotalAssigned)
	}
	if stats.Completed != 1 || stats.InProgress != 1 || stats.Assigned != 1 || stats.Unlocked != 1 {
		t.Fatalf("status counts: got=%+v", stats)
	}
	if stats.Overdue != 2 {
		t.Fatalf("overdue: want=2 got=%d", stats.Overdue)
	}
	// (100 + 15 + 0 + 0 + 5) / 5
	if stats.CompletionRate != 24 {
		t.Fatalf("completion rate: want=24 got=%v", stats.CompletionRate)
	}
}

func TestCalculateEmployeeStatsRoundsToOneDecimal(t *testing.T) {
	assignments := []model.TrainingAssignment{
		*assignmentWith(model.AssignmentCompleted, 60),
		*assignmentWith(model.AssignmentInProgress, 60),
		*assignmentWith(model.AssignmentAssigned, 60),
	}

	stats := CalculateEmployeeStats(assignments, testNow)
	// 115 / 3 = 38.333...
	if stats.CompletionRate != 38.3 {
		t.Fatalf("completion rate: want=38.3 got=%v", stats.CompletionRate)
	}
}

func TestNextOverdueAt(t *testing.T) {
	soon := testNow.Add(time.Hour)
	later := testNow.Add(24 * time.Hour)
	past := testNow.Add(-time.Hour)

	withDue := func(status model.AssignmentStatus, due *time.Time) model.TrainingAssignment {
		return model.TrainingAssignment{Status: status, DueDate: due}
	}

	if got := NextOverdueAt(nil, testNow); got != nil {
		t.Fatalf("empty: want=nil got=%v", got)
	}

	assignments := []model.TrainingAssignment{
		withDue(model.AssignmentAssigned, &later),
		withDue(model.AssignmentCompleted, &soon),
		withDue(model.AssignmentInProgress, &past),
		withDue(model.AssignmentUnlocked, nil),
	}
	if got := NextOverdueAt(assignments, testNow); got == nil || !got.Equal(later) {
		t.Fatalf("completed and past due dates must be skipped: got=%v", got)
	}

	assignments = append(assignments, withDue(model.AssignmentUnlocked, &soon))
	if got := NextOverdueAt(assignments, testNow); got == nil || !got.Equal(soon) {
		t.Fatalf("earliest due date: want=%v got=%v", soon, got)
	}
}
