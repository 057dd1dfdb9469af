package domain

// Actor types.
const (
	ActorHuman = "human"
	ActorAgent = "agent"
)

// Task lifecycle states used by the built-in methodologies.
const (
	StatusDraft     = "draft"
	StatusReview    = "review"
	StatusReady     = "ready"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusDone      = "done"
	StatusArchived  = "archived"
	StatusDiscarded = "discarded"
)

type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Status      string   `json:"status" enum:"draft,review,ready,active,paused,done,archived,discarded"`
	Priority    string   `json:"priority,omitempty" enum:"low,medium,high,critical"`
	Description string   `json:"description,omitempty"`
	AssigneeID  *string  `json:"assignee_id,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	CycleIDs    []string `json:"cycle_ids,omitempty"`
	References  []string `json:"references,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	CreatedAt   string   `json:"created_at" format:"date-time"`
	UpdatedAt   string   `json:"updated_at" format:"date-time"`
}

type Actor struct {
	ID          string   `json:"id"`
	Type        string   `json:"type" enum:"human,agent"`
	DisplayName string   `json:"display_name"`
	PublicKey   string   `json:"public_key,omitempty"`
	Roles       []string `json:"roles"`
	Status      string   `json:"status" enum:"active,revoked"`
	CreatedAt   string   `json:"created_at" format:"date-time"`
}

type Cycle struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status" enum:"planning,active,completed,archived"`
	TaskIDs   []string `json:"task_ids,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	CreatedAt string   `json:"created_at" format:"date-time"`
	UpdatedAt string   `json:"updated_at" format:"date-time"`
}

type Feedback struct {
	ID         string  `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	Type       string  `json:"type" enum:"assignment,blocking,suggestion,question,approval"`
	Status     string  `json:"status" enum:"open,acknowledged,resolved,wontfix"`
	Content    string  `json:"content,omitempty"`
	AssigneeID *string `json:"assignee_id,omitempty"`
	ResolvesID *string `json:"resolves_id,omitempty"`
	CreatedAt  string  `json:"created_at" format:"date-time"`
	UpdatedAt  string  `json:"updated_at" format:"date-time"`
}

type Execution struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Result    string `json:"result"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// Signature is one signing act over a record payload. Its cryptographic
// bytes are verified by the record package before the signature ever reaches
// the workflow engine; the engine only judges eligibility.
type Signature struct {
	KeyID     string `json:"key_id"`
	Role      string `json:"role"`
	Digest    string `json:"digest"`
	Signature string `json:"signature"`
	SignedAt  string `json:"signed_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}

type APIKey struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// HasRole reports whether the actor holds the given capability role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}
