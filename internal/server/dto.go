package server

import (
	"govline/internal/domain"
	"govline/internal/engine"
)

type CreateActorRequest struct {
	ID          string   `json:"id"`
	Type        string   `json:"type,omitempty" enum:"human,agent"`
	DisplayName string   `json:"display_name,omitempty"`
	PublicKey   string   `json:"public_key,omitempty"`
	Roles       []string `json:"roles,omitempty"`
}

type ActorResponse struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	DisplayName string   `json:"display_name,omitempty"`
	Roles       []string `json:"roles"`
	Status      string   `json:"status"`
	CreatedAt   string   `json:"created_at"`
}

func actorResponse(a domain.Actor) ActorResponse {
	return ActorResponse{
		ID:          a.ID,
		Type:        a.Type,
		DisplayName: a.DisplayName,
		Roles:       a.Roles,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
	}
}

type CreateTaskRequest struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Priority    string   `json:"priority,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type TaskResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority,omitempty"`
	Description string   `json:"description,omitempty"`
	AssigneeID  *string  `json:"assignee_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CycleIDs    []string `json:"cycle_ids,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func taskResponse(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Status:      t.Status,
		Priority:    t.Priority,
		Description: t.Description,
		AssigneeID:  t.AssigneeID,
		Tags:        t.Tags,
		CycleIDs:    t.CycleIDs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func mapTasks(tasks []domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}
	return out
}

type SubmitSignatureRequest struct {
	Command   string `json:"command"`
	KeyID     string `json:"key_id"`
	Role      string `json:"role"`
	Digest    string `json:"digest"`
	Signature string `json:"signature"`
	SignedAt  string `json:"signed_at"`
}

type SignatureResponse struct {
	KeyID    string `json:"key_id"`
	Role     string `json:"role"`
	Digest   string `json:"digest"`
	SignedAt string `json:"signed_at"`
}

type SubmitSignatureResponse struct {
	Task        TaskResponse `json:"task"`
	Transferred bool         `json:"transitioned"`
}

type EligibilityResponse struct {
	Eligible     bool   `json:"eligible"`
	TransitionTo string `json:"transition_to,omitempty"`
}

type TransitionResponse struct {
	From        string              `json:"from"`
	To          string              `json:"to"`
	Command     string              `json:"command,omitempty"`
	Event       string              `json:"event,omitempty"`
	CustomRules []string            `json:"custom_rules,omitempty"`
	Signatures  map[string]sigGroup `json:"signatures,omitempty"`
}

type sigGroup struct {
	Role            string   `json:"role"`
	CapabilityRoles []string `json:"capability_roles"`
	MinApprovals    int      `json:"min_approvals"`
	ActorType       string   `json:"actor_type,omitempty"`
	SpecificActors  []string `json:"specific_actors,omitempty"`
}

type CreateCycleRequest struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
}

type CycleResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	TaskIDs   []string `json:"task_ids,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func cycleResponse(c domain.Cycle) CycleResponse {
	return CycleResponse{
		ID:        c.ID,
		Title:     c.Title,
		Status:    c.Status,
		TaskIDs:   c.TaskIDs,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type CreateFeedbackRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Type       string `json:"type"`
	Content    string `json:"content,omitempty"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

type RecordExecutionRequest struct {
	Type   string `json:"type,omitempty" example:"progress"`
	Title  string `json:"title,omitempty"`
	Result string `json:"result" minLength:"1"`
}

type ExecutionResponse struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Result    string `json:"result"`
	CreatedAt string `json:"created_at"`
}

func executionResponse(ex domain.Execution) ExecutionResponse {
	return ExecutionResponse{
		ID:        ex.ID,
		TaskID:    ex.TaskID,
		Type:      ex.Type,
		Title:     ex.Title,
		Result:    ex.Result,
		CreatedAt: ex.CreatedAt,
	}
}

type FeedbackResponse struct {
	ID         string  `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	Type       string  `json:"type"`
	Status     string  `json:"status"`
	Content    string  `json:"content,omitempty"`
	AssigneeID *string `json:"assignee_id,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func feedbackResponse(f domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:         f.ID,
		EntityType: f.EntityType,
		EntityID:   f.EntityID,
		Type:       f.Type,
		Status:     f.Status,
		Content:    f.Content,
		AssigneeID: f.AssigneeID,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

type BoardResponse struct {
	View    string               `json:"view"`
	Columns []engine.BoardColumn `json:"columns"`
}

type CreateAPIKeyRequest struct {
	ActorID string `json:"actor_id"`
	Name    string `json:"name,omitempty"`
}

type CreateAPIKeyResponse struct {
	ID      string `json:"id"`
	ActorID string `json:"actor_id"`
	Key     string `json:"key" doc:"Plaintext API key, shown only once"`
}
