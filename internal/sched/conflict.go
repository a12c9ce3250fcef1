// Package sched contains the time-based services: conflict detection over
// task windows, recurrence-date computation, and the reminder poller.
package sched

import (
	"sort"
	"time"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// ConflictResult reports whether a candidate task's scheduling window
// overlaps existing scheduled tasks, and proposes an alternative start when
// it does.
type ConflictResult struct {
	HasConflict    bool
	Conflicting    []models.Task
	SuggestedStart *time.Time
}

// ConflictDetector checks candidate tasks against existing schedules.
type ConflictDetector interface {
	Detect(candidate models.Task, existing []models.Task) ConflictResult
}

type conflictDetector struct {
	defaultDuration time.Duration
}

// NewConflictDetector creates a detector that assumes the given duration for
// tasks without an explicit one.
func NewConflictDetector(defaultDuration time.Duration) ConflictDetector {
	if defaultDuration <= 0 {
		defaultDuration = models.DefaultDurationMinutes * time.Minute
	}
	return &conflictDetector{defaultDuration: defaultDuration}
}

// Detect compares the candidate's half-open window [start, start+duration)
// against every existing non-done, non-archived, dated task. A task without
// a due date never conflicts.
func (d *conflictDetector) Detect(candidate models.Task, existing []models.Task) ConflictResult {
	candStart, candEnd, ok := candidate.Window(d.defaultDuration)
	if !ok {
		return ConflictResult{}
	}

	var conflicting []models.Task
	for _, t := range relevant(candidate.ID, existing) {
		exStart, exEnd, _ := t.Window(d.defaultDuration)
		if overlaps(candStart, candEnd, exStart, exEnd) {
			conflicting = append(conflicting, t)
		}
	}

	if len(conflicting) == 0 {
		return ConflictResult{}
	}

	res := ConflictResult{HasConflict: true, Conflicting: conflicting}
	if suggested, ok := d.suggest(candidate, existing, candEnd.Sub(candStart)); ok {
		res.SuggestedStart = &suggested
	}
	return res
}

// overlaps evaluates the exact three-clause disjunction: candidate starts
// inside existing, candidate ends inside existing, or candidate fully
// contains existing.
func overlaps(candStart, candEnd, exStart, exEnd time.Time) bool {
	startsInside := !candStart.Before(exStart) && candStart.Before(exEnd)
	endsInside := candEnd.After(exStart) && !candEnd.After(exEnd)
	contains := !candStart.After(exStart) && !candEnd.Before(exEnd)
	return startsInside || endsInside || contains
}

// relevant filters existing tasks down to the ones that participate in
// conflict checks: scheduled, not done, not archived, and not the candidate
// itself.
func relevant(candidateID string, existing []models.Task) []models.Task {
	var out []models.Task
	for _, t := range existing {
		if t.ID == candidateID || t.Done || t.Status == models.StatusArchived || t.DueDate == nil {
			continue
		}
		out = append(out, t)
	}
	return out
}

// suggest scans existing tasks sorted by start time for the first gap of at
// least duration between one task's end and the next task's start that
// itself produces no conflict. When no gap fits, the suggestion is the end
// of the last task's window.
func (d *conflictDetector) suggest(candidate models.Task, existing []models.Task, duration time.Duration) (time.Time, bool) {
	tasks := relevant(candidate.ID, existing)
	if len(tasks) == 0 {
		return time.Time{}, false
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		si, _, _ := tasks[i].Window(d.defaultDuration)
		sj, _, _ := tasks[j].Window(d.defaultDuration)
		return si.Before(sj)
	})

	for i := 0; i < len(tasks)-1; i++ {
		_, end, _ := tasks[i].Window(d.defaultDuration)
		nextStart, _, _ := tasks[i+1].Window(d.defaultDuration)
		if nextStart.Sub(end) >= duration && d.fits(candidate, existing, end, duration) {
			return end, true
		}
	}

	_, lastEnd, _ := tasks[len(tasks)-1].Window(d.defaultDuration)
	return lastEnd, true
}

// fits re-tests the candidate shifted to the proposed start. Only the
// overlap check runs here, not suggestion, so the recursion bottoms out.
func (d *conflictDetector) fits(candidate models.Task, existing []models.Task, start time.Time, duration time.Duration) bool {
	end := start.Add(duration)
	for _, t := range relevant(candidate.ID, existing) {
		exStart, exEnd, _ := t.Window(d.defaultDuration)
		if overlaps(start, end, exStart, exEnd) {
			return false
		}
	}
	return true
}
