package googleapi

import "context"

// Task statuses known to the remote service.
const (
	TaskStatusNeedsAction = "needsAction"
	TaskStatusCompleted   = "completed"
)

// Task is one remote to-do entry.
type Task struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Notes  string `json:"notes,omitempty"`
	Due    string `json:"due,omitempty"` // RFC 3339
	Status string `json:"status,omitempty"`
}

// TaskUpdate holds the mutable task fields; empty strings are left
// untouched on the remote side.
type TaskUpdate struct {
	Title  string
	Notes  string
	Status string
}

// CreateTask creates a remote task and returns its assigned id.
func (c *Client) CreateTask(ctx context.Context, task Task) (string, error) {
	payload := map[string]interface{}{
		"title":  task.Title,
		"status": task.Status,
	}
	if task.Notes != "" {
		payload["notes"] = task.Notes
	}
	if task.Due != "" {
		payload["due"] = task.Due
	}

	var result struct {
		TaskID string `json:"taskId"`
	}
	if err := c.post(ctx, "/tasks/create_task", payload, &result); err != nil {
		return "", err
	}
	return result.TaskID, nil
}

// ListTasks fetches the user's live remote task list.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var result struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.post(ctx, "/tasks/list_tasks", nil, &result); err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

// DeleteTask removes one remote task by id.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.post(ctx, "/tasks/delete_task", map[string]interface{}{"task_id": taskID}, nil)
}

// UpdateTask patches one remote task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, updates TaskUpdate) error {
	payload := map[string]interface{}{"task_id": taskID}
	if updates.Title != "" {
		payload["title"] = updates.Title
	}
	if updates.Notes != "" {
		payload["notes"] = updates.Notes
	}
	if updates.Status != "" {
		payload["status"] = updates.Status
	}
	return c.post(ctx, "/tasks/update_task", payload, nil)
}
