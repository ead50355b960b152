// Package crew runs role-played tasks sequentially against an Analyst. Each
// task invokes its tools first, then hands the rendered tool output and the
// output of its context tasks to the analyst.
package crew

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"XAUCopilot/internal/llm"
	"XAUCopilot/internal/model"
	"XAUCopilot/internal/tool"
)

// DateLayout is how the run date is rendered in prompts.
const DateLayout = "2006-01-02"

// Role is the persona a task is performed as.
type Role struct {
	Name      string
	Goal      string
	Backstory string
	Tools     []tool.Tool
}

// ToolCall is one tool invocation made before the analyst is asked.
type ToolCall struct {
	Tool  tool.Tool
	Query string
}

// Task is one unit of work performed by a role.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Role           *Role
	ToolCalls      []ToolCall
	Context        []*Task

	// Annotate derives extra facts from the task's tool results. Optional.
	Annotate func(results []tool.Result) string
}

// Crew executes its tasks in order.
type Crew struct {
	Tasks   []*Task
	Analyst llm.Analyst
	Date    string
	Now     func() time.Time
}

// Kickoff runs every task and returns the recommendation. Tool failures are
// passed on to the analyst as rendered text; an analyst failure aborts the run.
func (c *Crew) Kickoff(ctx context.Context) (*model.Recommendation, error) {
	if len(c.Tasks) == 0 {
		return nil, errors.New("crew has no tasks")
	}
	if c.Analyst == nil {
		return nil, errors.New("crew has no analyst")
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}

	rec := &model.Recommendation{
		RunID:     uuid.NewString(),
		Date:      c.Date,
		StartedAt: now(),
	}
	outputs := make(map[*Task]string, len(c.Tasks))

	for i, task := range c.Tasks {
		if task.Role == nil {
			return nil, fmt.Errorf("task %q has no role", task.Name)
		}
		log.Printf("[INFO] [crew %s] task %d/%d %q started by %s", rec.RunID[:8], i+1, len(c.Tasks), task.Name, task.Role.Name)

		contextOutputs := make([]string, 0, len(task.Context))
		for _, dep := range task.Context {
			out, ok := outputs[dep]
			if !ok {
				return nil, fmt.Errorf("task %q depends on %q, which has not run", task.Name, dep.Name)
			}
			contextOutputs = append(contextOutputs, out)
		}

		results := make([]tool.Result, 0, len(task.ToolCalls))
		for _, call := range task.ToolCalls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results = append(results, call.Tool.Invoke(ctx, call.Query))
		}

		var notes string
		if task.Annotate != nil {
			notes = task.Annotate(results)
		}

		system := systemPrompt(task.Role)
		user := userPrompt(task, contextOutputs, results, notes)
		out, err := c.Analyst.Complete(ctx, system, user)
		if err != nil {
			return nil, fmt.Errorf("task %q (%s): %w", task.Name, task.Role.Name, err)
		}
		outputs[task] = out
		rec.Tasks = append(rec.Tasks, model.TaskOutput{Role: task.Role.Name, Task: task.Name, Output: out})
		log.Printf("[INFO] [crew %s] task %q finished", rec.RunID[:8], task.Name)
	}

	rec.Final = rec.Tasks[len(rec.Tasks)-1].Output
	rec.FinishedAt = now()
	return rec, nil
}

func systemPrompt(r *Role) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. %s\nYour personal goal is: %s", r.Name, strings.TrimSpace(r.Backstory), r.Goal)
	if len(r.Tools) > 0 {
		b.WriteString("\n\nYou have access to the following tools, whose results are included in each request:")
		for _, t := range r.Tools {
			fmt.Fprintf(&b, "\n- %s: %s", t.Name(), t.Description())
		}
	}
	b.WriteString("\n\nUse only the information provided. Do not invent data.")
	return b.String()
}

func userPrompt(task *Task, contextOutputs []string, results []tool.Result, notes string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current Task: %s\n\nThis is the expected criteria for your final answer: %s\n",
		strings.TrimSpace(task.Description), task.ExpectedOutput)

	if len(contextOutputs) > 0 {
		b.WriteString("\nThis is the context you're working with:\n")
		b.WriteString(strings.Join(contextOutputs, "\n\n"))
		b.WriteString("\n")
	}

	for i, res := range results {
		call := task.ToolCalls[i]
		if call.Query != "" {
			fmt.Fprintf(&b, "\nTool: %s\nInput: %s\nResult:\n%s\n", call.Tool.Name(), call.Query, res.Render())
		} else {
			fmt.Fprintf(&b, "\nTool: %s\nResult:\n%s\n", call.Tool.Name(), res.Render())
		}
	}

	if notes != "" {
		fmt.Fprintf(&b, "\nRule-based reading of the latest bar:\n%s\n", notes)
	}

	b.WriteString("\nBegin! Give your best final answer.")
	return b.String()
}
