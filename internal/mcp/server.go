package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/sprint/internal/board"
	"github.com/joescharf/sprint/internal/models"
	"github.com/joescharf/sprint/internal/nlq"
	"github.com/joescharf/sprint/internal/store"
)

// Server wraps the sprint data layer and exposes it as MCP tools.
type Server struct {
	store store.Store
}

// NewServer creates the MCP server wrapper.
func NewServer(s store.Store) *Server {
	return &Server{store: s}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("sprint", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.askTool())
	srv.AddTool(s.createIterationTool())
	srv.AddTool(s.listIterationsTool())
	srv.AddTool(s.queryIssuesTool())
	srv.AddTool(s.createIssueTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) loadBoard(ctx context.Context) (*board.Board, error) {
	return s.store.LoadBoard(ctx)
}

// issueOut is the JSON shape issues take in tool results.
type issueOut struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Assignee    string   `json:"assignee,omitempty"`
	Iteration   string   `json:"iteration,omitempty"`
	Labels      []string `json:"labels,omitempty"`
	StoryPoints int      `json:"story_points"`
}

func toIssueOut(issues []*models.Issue) []issueOut {
	out := make([]issueOut, len(issues))
	for i, issue := range issues {
		out[i] = issueOut{
			ID:          issue.ID,
			Title:       issue.Title,
			Status:      string(issue.Status),
			Type:        string(issue.Type),
			Priority:    string(issue.Priority),
			Assignee:    issue.Assignee,
			Iteration:   issue.Iteration,
			Labels:      issue.Labels,
			StoryPoints: issue.StoryPoints,
		}
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// sprint_ask
func (s *Server) askTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sprint_ask",
		mcp.WithDescription("Ask a natural-language question about tracked issues, e.g. \"What is Emily working on?\", \"How many bugs are left?\", \"Show blocked issues\". Scope to one iteration with the iteration parameter; default is the whole board."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to ask")),
		mcp.WithString("iteration", mcp.Description("Iteration name to scope the question to")),
	)
	return tool, s.handleAsk
}

func (s *Server) handleAsk(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	b, err := s.loadBoard(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load board: %v", err)), nil
	}

	var res nlq.Result
	if iterName := request.GetString("iteration", ""); iterName != "" {
		it, err := b.GetIteration(iterName)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("iteration not found: %s", iterName)), nil
		}
		res, err = it.Ask(question)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		res, err = b.Ask(question)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	switch res.Kind {
	case nlq.KindCount:
		return jsonResult(map[string]any{"count": res.Count})
	case nlq.KindStats:
		return jsonResult(res.Stats)
	case nlq.KindValue:
		return jsonResult(map[string]any{"value": res.Value})
	default:
		return jsonResult(toIssueOut(res.Issues))
	}
}

// sprint_create_iteration
func (s *Server) createIterationTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sprint_create_iteration",
		mcp.WithDescription("Create a new iteration (sprint) with a name and start/end dates (YYYY-MM-DD)."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Iteration name, e.g. \"Sprint 3\"")),
		mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date, YYYY-MM-DD")),
		mcp.WithString("end_date", mcp.Required(), mcp.Description("End date, YYYY-MM-DD")),
		mcp.WithString("goal", mcp.Description("Iteration goal")),
	)
	return tool, s.handleCreateIteration
}

func (s *Server) handleCreateIteration(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: name"), nil
	}
	startStr, err := request.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: start_date"), nil
	}
	endStr, err := request.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: end_date"), nil
	}

	start, err := time.ParseInLocation("2006-01-02", startStr, time.UTC)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start_date: %v", err)), nil
	}
	end, err := time.ParseInLocation("2006-01-02", endStr, time.UTC)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end_date: %v", err)), nil
	}

	b, err := s.loadBoard(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load board: %v", err)), nil
	}

	it, err := b.CreateIteration(name, start, end, request.GetString("goal", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.SaveBoard(ctx, b); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save board: %v", err)), nil
	}

	return jsonResult(map[string]any{
		"name":       it.Name,
		"start_date": it.StartDate.Format("2006-01-02"),
		"end_date":   it.EndDate.Format("2006-01-02"),
		"goal":       it.Goal,
	})
}

// sprint_list_iterations
func (s *Server) listIterationsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sprint_list_iterations",
		mcp.WithDescription("List all iterations with their dates and summary statistics, ordered by start date."),
	)
	return tool, s.handleListIterations
}

func (s *Server) handleListIterations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.loadBoard(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load board: %v", err)), nil
	}

	iterations := b.ListIterations()
	out := make([]board.Summary, len(iterations))
	for i, it := range iterations {
		out[i] = it.Summary()
	}
	return jsonResult(out)
}

// sprint_query_issues
func (s *Server) queryIssuesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sprint_query_issues",
		mcp.WithDescription("Query and filter issues across iterations by assignee, status, type, priority, or label. All filters are optional and combine with AND."),
		mcp.WithString("iteration", mcp.Description("Iteration name or partial name")),
		mcp.WithString("assignee", mcp.Description("Assignee name")),
		mcp.WithString("status", mcp.Description("Status: todo, in_progress, blocked, done, closed, open, closed_set")),
		mcp.WithString("type", mcp.Description("Issue type: bug, story, task, spike, epic")),
		mcp.WithString("priority", mcp.Description("Priority: low, medium, high, critical")),
		mcp.WithString("label", mcp.Description("Label to match")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	)
	return tool, s.handleQueryIssues
}

func (s *Server) handleQueryIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.loadBoard(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load board: %v", err)), nil
	}

	q := b.Query()
	if v := request.GetString("iteration", ""); v != "" {
		q = q.Iteration(v)
	}
	if v := request.GetString("assignee", ""); v != "" {
		q = q.Assignee(v)
	}
	if v := request.GetString("status", ""); v != "" {
		switch v {
		case "open":
			q = q.IsOpen()
		case "closed_set":
			q = q.IsClosed()
		default:
			status, err := models.ParseStatus(v)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			q = q.Status(status)
		}
	}
	if v := request.GetString("type", ""); v != "" {
		t, err := models.ParseType(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q = q.Type(t)
	}
	if v := request.GetString("priority", ""); v != "" {
		p, err := models.ParsePriority(v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		q = q.Priority(p)
	}
	if v := request.GetString("label", ""); v != "" {
		q = q.Label(v)
	}
	if n := request.GetInt("limit", 0); n > 0 {
		q = q.Limit(n)
	}

	issues, err := q.ByPriority().Execute()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(toIssueOut(issues))
}

// sprint_create_issue
func (s *Server) createIssueTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("sprint_create_issue",
		mcp.WithDescription("Create a new issue, optionally attached to an iteration."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Issue title")),
		mcp.WithString("description", mcp.Description("Issue description")),
		mcp.WithString("type", mcp.Description("Issue type: bug, story, task, spike, epic (default task)")),
		mcp.WithString("priority", mcp.Description("Priority: low, medium, high, critical (default medium)")),
		mcp.WithString("assignee", mcp.Description("Assignee name")),
		mcp.WithString("iteration", mcp.Description("Iteration name")),
		mcp.WithNumber("story_points", mcp.Description("Story point estimate")),
	)
	return tool, s.handleCreateIssue
}

func (s *Server) handleCreateIssue(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}

	issueType, err := models.ParseType(request.GetString("type", string(models.IssueTypeTask)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	priority, err := models.ParsePriority(request.GetString("priority", string(models.IssuePriorityMedium)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	b, err := s.loadBoard(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load board: %v", err)), nil
	}

	iterName := request.GetString("iteration", "")
	if iterName != "" {
		it, err := b.GetIteration(iterName)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("iteration not found: %s", iterName)), nil
		}
		iterName = it.Name
	}

	now := time.Now().UTC()
	issue := &models.Issue{
		ID:          models.NewID(),
		Title:       title,
		Description: request.GetString("description", ""),
		Status:      models.IssueStatusTodo,
		Type:        issueType,
		Priority:    priority,
		Assignee:    request.GetString("assignee", ""),
		Iteration:   iterName,
		StoryPoints: request.GetInt("story_points", 0),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.AddIssue(issue); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.SaveBoard(ctx, b); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save board: %v", err)), nil
	}

	return jsonResult(toIssueOut([]*models.Issue{issue})[0])
}
