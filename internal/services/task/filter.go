package task

import (
	"strings"

	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/HeorhiiKortunov/CoreTask/internal/db/models"
	"github.com/HeorhiiKortunov/CoreTask/internal/services/validation"
)

// FilterField is the FieldErrors key reported for a bad filter expression.
const FilterField = "filter"

const filterCacheSize = 256

// evaluators caches compiled expressions by their source text.
var evaluators, _ = lru.New[string, *bexpr.Evaluator](filterCacheSize)

// Filter selects tasks with a go-bexpr expression. The expression sees
// name, description, status, projectId, assigneeId (0 when unassigned),
// assigned and hasDueDate, e.g. `status == "TODO" and assigned == false`.
type Filter struct {
	evaluator *bexpr.Evaluator
}

// ParseFilter compiles expr. A blank expression yields a nil Filter that
// keeps every task. Syntax errors are validation.FieldErrors on "filter".
func ParseFilter(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if cached, ok := evaluators.Get(expr); ok {
		return &Filter{evaluator: cached}, nil
	}

	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, validation.FieldErrors{FilterField: "invalid expression: " + err.Error()}
	}
	evaluators.Add(expr, evaluator)
	return &Filter{evaluator: evaluator}, nil
}

// Apply returns the tasks matching f in a new slice; tasks is not modified.
// A task the expression cannot be evaluated against does not match.
func (f *Filter) Apply(tasks []models.Task) []models.Task {
	if f == nil {
		return tasks
	}
	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		ok, err := f.evaluator.Evaluate(filterFields(&tasks[i]))
		if err == nil && ok {
			out = append(out, tasks[i])
		}
	}
	return out
}

func filterFields(t *models.Task) map[string]any {
	var assigneeID int64
	if t.AssigneeID != nil {
		assigneeID = *t.AssigneeID
	}
	return map[string]any{
		"name":        t.Name,
		"description": t.Description,
		"status":      string(t.Status),
		"projectId":   t.ProjectID,
		"assigneeId":  assigneeID,
		"assigned":    t.AssigneeID != nil,
		"hasDueDate":  t.DueTo != nil,
	}
}
