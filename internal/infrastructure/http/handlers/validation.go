package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/amirhosseinghanipour/taskboard/internal/domain"
	domerrors "github.com/amirhosseinghanipour/taskboard/internal/domain/errors"
)

// Accepted dueDate layouts, tried in order.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseDueDate parses s with the first matching layout. Empty yields nil.
func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid dueDate %q", s)
}

// taskFields is the wire form of a task's user-editable fields.
type taskFields struct {
	TaskName      string `json:"taskName"`
	DueDate       string `json:"dueDate"`
	Priority      string `json:"priority"`
	Reminder      string `json:"reminder"`
	TaskCompleted bool   `json:"taskCompleted"`
}

// newTask carries the required fields for task creation.
type newTask struct {
	TaskName      string `json:"taskName" validate:"required"`
	DueDate       string `json:"dueDate" validate:"required"`
	Priority      string `json:"priority" validate:"required"`
	Reminder      string `json:"reminder" validate:"required"`
	TaskCompleted bool   `json:"taskCompleted"`
}

func (f taskFields) toDomain() (domain.Task, error) {
	due, err := parseDueDate(f.DueDate)
	if err != nil {
		return domain.Task{}, err
	}
	return domain.Task{
		TaskName:      f.TaskName,
		DueDate:       due,
		Priority:      f.Priority,
		Reminder:      f.Reminder,
		TaskCompleted: f.TaskCompleted,
	}, nil
}

func (t newTask) toDomain() (domain.Task, error) {
	return taskFields(t).toDomain()
}

// parseTaskIDs reads the "tasks" member of a delete request. It must be a
// non-empty JSON array; scalar elements are stringified so numeric ids compare like string ids.
func parseTaskIDs(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, domerrors.ErrInvalidRequest
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil || len(items) == 0 {
		return nil, domerrors.ErrInvalidRequest
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			ids = append(ids, v)
		case json.Number:
			ids = append(ids, numberID(v))
		case nil:
			ids = append(ids, "null")
		default:
			ids = append(ids, fmt.Sprint(v))
		}
	}
	return ids, nil
}

// numberID renders a JSON number in its shortest decimal form, so 1.0 and 1e2
// become "1" and "100".
func numberID(n json.Number) string {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
