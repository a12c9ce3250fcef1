// Package mcp exposes the task manager as MCP (Model Context Protocol)
// tools so AI assistants can read and mutate the task list over stdio.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/tasktalk/internal/dispatch"
	"github.com/valter-silva-au/tasktalk/internal/store"
	"github.com/valter-silva-au/tasktalk/pkg/models"
)

// Server wraps the dispatcher and store behind MCP tools.
type Server struct {
	server     *gomcp.Server
	dispatcher *dispatch.Dispatcher
	store      *store.TaskStore
}

// NewServer creates an MCP server over the given services.
func NewServer(d *dispatch.Dispatcher, s *store.TaskStore, version string) *Server {
	if version == "" {
		version = "dev"
	}

	srv := &Server{dispatcher: d, store: s}
	srv.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tasktalk", Version: version},
		nil,
	)
	srv.registerTools()
	return srv
}

// Run starts the server on stdio, blocking until the client disconnects or
// the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type addTaskInput struct {
	Text string `json:"text" jsonschema:"required,the task in plain language, e.g. 'call mom tomorrow at 5pm #family'"`
}

type messageOutput struct {
	Message string `json:"message"`
}

type listTasksInput struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status (pending, completed, archived)"`
	Tag    string `json:"tag,omitempty" jsonschema:"filter by tag"`
}

type taskOutput struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Priority string   `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Due      string   `json:"due,omitempty"`
	Created  string   `json:"created"`
}

type listTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type matchTaskInput struct {
	Text string `json:"text" jsonschema:"required,case-insensitive title text identifying the task"`
	All  bool   `json:"all,omitempty" jsonschema:"apply to every match instead of only the first"`
}

type getSummaryInput struct {
	Period string `json:"period,omitempty" jsonschema:"'today', 'tomorrow' or 'week'. Defaults to today."`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "add_task",
		Description: "Record a task from plain language. Dates, tags (#tag) and priorities (!high) are extracted from the text.",
	}, s.handleAddTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks with optional status and tag filters.",
	}, s.handleListTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_task",
		Description: "Complete the first task whose title contains the given text. Recurring tasks schedule their next occurrence.",
	}, s.handleCompleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "delete_task",
		Description: "Delete the first task whose title contains the given text.",
	}, s.handleDeleteTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_summary",
		Description: "Summarize open, done and overdue tasks for today, tomorrow, or this week.",
	}, s.handleGetSummary)
}

// --- Tool handlers ---

func (s *Server) handleAddTask(ctx context.Context, _ *gomcp.CallToolRequest, input addTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return errorResult("text is required"), messageOutput{}, nil
	}

	msg, err := s.dispatcher.AddFromText(ctx, input.Text)
	if err != nil {
		return errorResult(fmt.Sprintf("adding task: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: msg}, nil
}

func (s *Server) handleListTasks(_ context.Context, _ *gomcp.CallToolRequest, input listTasksInput) (*gomcp.CallToolResult, listTasksOutput, error) {
	if input.Status != "" {
		switch models.TaskStatus(input.Status) {
		case models.StatusPending, models.StatusCompleted, models.StatusArchived:
		default:
			return errorResult(fmt.Sprintf("invalid status %q: must be pending, completed or archived", input.Status)), listTasksOutput{}, nil
		}
	}

	out := listTasksOutput{Tasks: []taskOutput{}}
	for _, t := range s.store.Sorted() {
		if input.Status != "" && t.Status != models.TaskStatus(input.Status) {
			continue
		}
		if input.Tag != "" && !t.HasTag(input.Tag) {
			continue
		}
		out.Tasks = append(out.Tasks, taskToOutput(t))
	}
	out.Count = len(out.Tasks)
	return nil, out, nil
}

func (s *Server) handleCompleteTask(_ context.Context, _ *gomcp.CallToolRequest, input matchTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return errorResult("text is required"), messageOutput{}, nil
	}

	msg, err := s.dispatcher.Complete(input.Text, input.All)
	if err != nil {
		return errorResult(fmt.Sprintf("completing task: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: msg}, nil
}

func (s *Server) handleDeleteTask(_ context.Context, _ *gomcp.CallToolRequest, input matchTaskInput) (*gomcp.CallToolResult, messageOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return errorResult("text is required"), messageOutput{}, nil
	}

	msg, err := s.dispatcher.Delete(input.Text, input.All)
	if err != nil {
		return errorResult(fmt.Sprintf("deleting task: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: msg}, nil
}

func (s *Server) handleGetSummary(_ context.Context, _ *gomcp.CallToolRequest, input getSummaryInput) (*gomcp.CallToolResult, messageOutput, error) {
	period := input.Period
	switch period {
	case "", "today":
		period = "today"
	case "tomorrow", "week":
	default:
		return errorResult(fmt.Sprintf("invalid period %q: must be today, tomorrow or week", input.Period)), messageOutput{}, nil
	}

	msg, err := s.dispatcher.Summarize(period)
	if err != nil {
		return errorResult(fmt.Sprintf("summarizing: %s", err)), messageOutput{}, nil
	}
	return nil, messageOutput{Message: msg}, nil
}

// --- Helpers ---

func taskToOutput(t models.Task) taskOutput {
	out := taskOutput{
		ID:       t.ID,
		Title:    t.Title,
		Status:   string(t.Status),
		Priority: string(t.Priority),
		Tags:     t.AllTags(),
		Created:  t.CreatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		out.Due = t.DueDate.Format(time.RFC3339)
	}
	return out
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
