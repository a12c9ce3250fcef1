package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// Prefs are the user preferences persisted alongside the task list.
type Prefs struct {
	SortBy          string `json:"sortBy,omitempty"`
	DarkMode        bool   `json:"darkMode"`
	CalendarVisible bool   `json:"calendarVisible"`
}

// TaskStore owns the mutable task collection. Readers receive deep-copied
// snapshots; writers submit transformation functions which are applied one
// at a time under the lock, so a reminder sweep and a user edit can never
// interleave on a half-applied state.
type TaskStore struct {
	mu       sync.Mutex
	kv       KV
	tasks    []models.Task
	projects []models.Project
	prefs    Prefs
}

// New creates a TaskStore backed by the given KV collaborator.
func New(kv KV) *TaskStore {
	return &TaskStore{kv: kv}
}

// Load reads tasks, projects, and preferences from the KV collaborator,
// applying the legacy-shape migration to whatever it finds. Missing keys
// leave the corresponding collection empty.
func (s *TaskStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get(KeyTasks)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	if data != nil {
		var tasks []models.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return fmt.Errorf("decoding tasks: %w", err)
		}
		s.tasks = migrateTasks(tasks)
	}

	data, err = s.kv.Get(KeyProjects)
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}
	if data != nil {
		if err := json.Unmarshal(data, &s.projects); err != nil {
			return fmt.Errorf("decoding projects: %w", err)
		}
	}

	data, err = s.kv.Get(KeyPrefs)
	if err != nil {
		return fmt.Errorf("loading prefs: %w", err)
	}
	if data != nil {
		if err := json.Unmarshal(data, &s.prefs); err != nil {
			return fmt.Errorf("decoding prefs: %w", err)
		}
	}

	return nil
}

// save persists all three keys. Caller must hold the lock.
func (s *TaskStore) save() error {
	tasks := s.tasks
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	if err := s.kv.Set(KeyTasks, data); err != nil {
		return fmt.Errorf("saving tasks: %w", err)
	}

	projects := s.projects
	if projects == nil {
		projects = []models.Project{}
	}
	data, err = json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}
	if err := s.kv.Set(KeyProjects, data); err != nil {
		return fmt.Errorf("saving projects: %w", err)
	}

	data, err = json.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	if err := s.kv.Set(KeyPrefs, data); err != nil {
		return fmt.Errorf("saving prefs: %w", err)
	}

	return nil
}

// Snapshot returns a deep copy of the current task list in store order.
func (s *TaskStore) Snapshot() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = s.tasks[i].Clone()
	}
	return out
}

// Apply runs fn against a copy of the task list, installs the result as the
// new state, and persists it. Transformations are serialized; fn must be
// pure (no retained references to its argument).
func (s *TaskStore) Apply(fn func(tasks []models.Task) []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := make([]models.Task, len(s.tasks))
	for i := range s.tasks {
		work[i] = s.tasks[i].Clone()
	}
	s.tasks = fn(work)
	return s.save()
}

// Get returns a copy of the task with the given ID.
func (s *TaskStore) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return s.tasks[i].Clone(), true
		}
	}
	return models.Task{}, false
}

// Projects returns a copy of the project list.
func (s *TaskStore) Projects() []models.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Project(nil), s.projects...)
}

// ProjectByName finds a project by case-insensitive name.
func (s *TaskStore) ProjectByName(name string) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return models.Project{}, false
}

// EnsureProject returns the project with the given name, creating it when
// absent.
func (s *TaskStore) EnsureProject(name string) (models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	p := models.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	s.projects = append(s.projects, p)
	return p, s.save()
}

// Prefs returns the current preferences.
func (s *TaskStore) Prefs() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// UpdatePrefs applies fn to the preferences and persists them.
func (s *TaskStore) UpdatePrefs(fn func(p *Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.prefs)
	return s.save()
}

// Sorted returns a snapshot ordered by the persisted sort preference.
// Unset or unrecognized preferences keep store order (creation order).
func (s *TaskStore) Sorted() []models.Task {
	tasks := s.Snapshot()
	switch s.Prefs().SortBy {
	case "priority":
		rank := map[models.Priority]int{
			models.PriorityHigh:   0,
			models.PriorityMedium: 1,
			models.PriorityLow:    2,
		}
		sort.SliceStable(tasks, func(i, j int) bool {
			ri, ok := rank[tasks[i].Priority]
			if !ok {
				ri = 3
			}
			rj, ok := rank[tasks[j].Priority]
			if !ok {
				rj = 3
			}
			return ri < rj
		})
	case "due":
		sort.SliceStable(tasks, func(i, j int) bool {
			if tasks[i].DueDate == nil {
				return false
			}
			if tasks[j].DueDate == nil {
				return true
			}
			return tasks[i].DueDate.Before(*tasks[j].DueDate)
		})
	case "created":
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		})
	case "alphabetical":
		sort.SliceStable(tasks, func(i, j int) bool {
			return strings.ToLower(tasks[i].Title) < strings.ToLower(tasks[j].Title)
		})
	}
	return tasks
}
