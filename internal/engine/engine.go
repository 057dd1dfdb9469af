// Package engine drives record lifecycles. It is the caller of the workflow
// authorization engine: it owns quorum aggregation over a record's full
// signature set, applies transitions once every requirement holds, and
// journals every change to the event log.
package engine

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"govline/internal/config"
	"govline/internal/domain"
	"govline/internal/events"
	"govline/internal/methodology"
	"govline/internal/record"
	"govline/internal/repo"
	"govline/internal/workflow"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Flow   *workflow.Adapter
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config, flow *workflow.Adapter) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Flow:   flow,
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) nowStr() string {
	return e.now().UTC().Format(time.RFC3339)
}

// CreateActor registers an identity that may sign records.
func (e Engine) CreateActor(ctx context.Context, a domain.Actor) (domain.Actor, error) {
	if a.ID == "" {
		return a, errors.New("actor id is required")
	}
	if a.Type == "" {
		a.Type = domain.ActorHuman
	}
	if a.Type != domain.ActorHuman && a.Type != domain.ActorAgent {
		return a, fmt.Errorf("unknown actor type %q", a.Type)
	}
	if a.Status == "" {
		a.Status = "active"
	}
	a.CreatedAt = e.nowStr()
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return a, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertActor(ctx, tx, a); err != nil {
		return a, err
	}
	if err := e.Events.Append(ctx, tx, "actor.created", "actor", a.ID, a.ID, events.EventPayload{"type": a.Type, "roles": a.Roles}); err != nil {
		return a, err
	}
	return a, tx.Commit()
}

// UpdateActorRoles replaces an actor's capability roles.
func (e Engine) UpdateActorRoles(ctx context.Context, actorID string, roles []string) error {
	if _, err := e.Repo.GetActor(ctx, actorID); err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateActorRoles(ctx, tx, actorID, roles); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "actor.roles.updated", "actor", actorID, actorID, events.EventPayload{"roles": roles}); err != nil {
		return err
	}
	return tx.Commit()
}

// RevokeActor marks an actor revoked. Revoked actors keep their history but
// can no longer sign.
func (e Engine) RevokeActor(ctx context.Context, actorID, byActorID string) error {
	if _, err := e.Repo.GetActor(ctx, actorID); err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.RevokeActor(ctx, tx, actorID); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "actor.revoked", "actor", actorID, byActorID, events.EventPayload{}); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordExecution attaches an execution report to a task.
func (e Engine) RecordExecution(ctx context.Context, exec domain.Execution, actorID string) (domain.Execution, error) {
	if exec.TaskID == "" || exec.Result == "" {
		return exec, errors.New("task_id and result are required")
	}
	if _, err := e.Repo.GetTask(ctx, exec.TaskID); err != nil {
		return exec, err
	}
	if exec.ID == "" {
		exec.ID = uuid.New().String()
	}
	exec.CreatedAt = e.nowStr()
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return exec, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertExecution(ctx, tx, exec); err != nil {
		return exec, err
	}
	if err := e.Events.Append(ctx, tx, "execution.recorded", "task", exec.TaskID, actorID, events.EventPayload{"execution_id": exec.ID, "type": exec.Type}); err != nil {
		return exec, err
	}
	return exec, tx.Commit()
}

// ExportTask packages a task and its stored signatures as a portable record
// envelope.
func (e Engine) ExportTask(ctx context.Context, taskID string) (record.Envelope, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return record.Envelope{}, err
	}
	env, err := record.New("task", t)
	if err != nil {
		return env, err
	}
	sigs, err := e.Repo.ListSignatures(ctx, "task", t.ID)
	if err != nil {
		return env, err
	}
	env.Signatures = sigs
	return env, nil
}

// VerifyTask checks every stored signature against the signer's registered
// public key. Each signature is verified over the digest it recorded at
// signing time: the task payload moves on with every transition, so older
// signatures attest earlier states by construction.
func (e Engine) VerifyTask(ctx context.Context, taskID string) error {
	sigs, err := e.Repo.ListSignatures(ctx, "task", taskID)
	if err != nil {
		return err
	}
	for _, sig := range sigs {
		pub, err := e.Repo.PublicKey(ctx, sig.KeyID)
		if err != nil {
			return fmt.Errorf("signing key for %s: %w", sig.KeyID, err)
		}
		if err := record.Verify(pub, sig, sig.Digest); err != nil {
			return fmt.Errorf("signature by %s: %w", sig.KeyID, err)
		}
	}
	return nil
}

// CreateAPIKey mints an API key bound to an actor. The plaintext key is
// returned once; only its hash is stored.
func (e Engine) CreateAPIKey(ctx context.Context, actorID, name string) (string, domain.APIKey, error) {
	if _, err := e.Repo.GetActor(ctx, actorID); err != nil {
		return "", domain.APIKey{}, err
	}
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", domain.APIKey{}, err
	}
	plaintext := "gvk_" + hex.EncodeToString(raw)
	key := domain.APIKey{
		ID:        uuid.New().String(),
		ActorID:   actorID,
		Name:      name,
		KeyHash:   repo.HashAPIKey(plaintext),
		CreatedAt: e.nowStr(),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", key, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertAPIKey(ctx, tx, key); err != nil {
		return "", key, err
	}
	if err := e.Events.Append(ctx, tx, "apikey.created", "actor", actorID, actorID, events.EventPayload{"key_id": key.ID}); err != nil {
		return "", key, err
	}
	return plaintext, key, tx.Commit()
}

// TaskCreateOptions are parameters for creating a task record.
type TaskCreateOptions struct {
	ID          string
	Title       string
	Priority    string
	Description string
	Tags        []string
	CycleIDs    []string
	ActorID     string
}

// CreateTask creates a task in draft.
func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if opts.Title == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if opts.ActorID == "" {
		return domain.Task{}, errors.New("actor is required")
	}
	if _, err := e.Repo.GetActor(ctx, opts.ActorID); err != nil {
		return domain.Task{}, err
	}
	now := e.nowStr()
	id := opts.ID
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(opts.Title+"|"+now)).String()
	}
	t := domain.Task{
		ID:          id,
		Title:       opts.Title,
		Status:      domain.StatusDraft,
		Priority:    opts.Priority,
		Description: opts.Description,
		Tags:        opts.Tags,
		CycleIDs:    opts.CycleIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertTask(ctx, tx, t); err != nil {
		return t, err
	}
	if err := e.Events.Append(ctx, tx, "task.created", "task", t.ID, opts.ActorID, events.EventPayload{"title": t.Title, "status": t.Status}); err != nil {
		return t, err
	}
	return t, tx.Commit()
}

// AssignTask sets the assignee and opens an assignment feedback in one step.
// The assignment only counts toward assignment_required rules once resolved.
func (e Engine) AssignTask(ctx context.Context, taskID, assigneeID, actorID string) (domain.Feedback, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Feedback{}, err
	}
	if _, err := e.Repo.GetActor(ctx, assigneeID); err != nil {
		return domain.Feedback{}, err
	}
	now := e.nowStr()
	t.AssigneeID = &assigneeID
	t.UpdatedAt = now
	fb := domain.Feedback{
		ID:         uuid.New().String(),
		EntityType: "task",
		EntityID:   taskID,
		Type:       "assignment",
		Status:     "open",
		AssigneeID: &assigneeID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return fb, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
		return fb, err
	}
	if err := e.Repo.InsertFeedback(ctx, tx, fb); err != nil {
		return fb, err
	}
	if err := e.Events.Append(ctx, tx, "task.assigned", "task", taskID, actorID, events.EventPayload{"assignee": assigneeID, "feedback_id": fb.ID}); err != nil {
		return fb, err
	}
	return fb, tx.Commit()
}

// CreateFeedback records feedback against any record.
func (e Engine) CreateFeedback(ctx context.Context, fb domain.Feedback, actorID string) (domain.Feedback, error) {
	if fb.EntityType == "" || fb.EntityID == "" || fb.Type == "" {
		return fb, errors.New("entity_type, entity_id and type are required")
	}
	if fb.ID == "" {
		fb.ID = uuid.New().String()
	}
	if fb.Status == "" {
		fb.Status = "open"
	}
	now := e.nowStr()
	fb.CreatedAt = now
	fb.UpdatedAt = now
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return fb, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertFeedback(ctx, tx, fb); err != nil {
		return fb, err
	}
	if err := e.Events.Append(ctx, tx, "feedback.created", "feedback", fb.ID, actorID, events.EventPayload{"entity": fb.EntityID, "type": fb.Type}); err != nil {
		return fb, err
	}
	return fb, tx.Commit()
}

// ResolveFeedback marks a feedback record resolved.
func (e Engine) ResolveFeedback(ctx context.Context, feedbackID, actorID string) error {
	if _, err := e.Repo.GetFeedback(ctx, feedbackID); err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.SetFeedbackStatus(ctx, tx, feedbackID, "resolved", e.nowStr()); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "feedback.resolved", "feedback", feedbackID, actorID, events.EventPayload{}); err != nil {
		return err
	}
	return tx.Commit()
}

// CreateCycle creates a planning cycle.
func (e Engine) CreateCycle(ctx context.Context, c domain.Cycle, actorID string) (domain.Cycle, error) {
	if c.Title == "" {
		return c, errors.New("title is required")
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = "planning"
	}
	now := e.nowStr()
	c.CreatedAt = now
	c.UpdatedAt = now
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return c, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertCycle(ctx, tx, c); err != nil {
		return c, err
	}
	if err := e.Events.Append(ctx, tx, "cycle.created", "cycle", c.ID, actorID, events.EventPayload{"title": c.Title, "status": c.Status}); err != nil {
		return c, err
	}
	return c, tx.Commit()
}

func ensureCycleTransition(oldStatus, newStatus string) error {
	switch oldStatus {
	case "planning":
		if newStatus == "active" || newStatus == "archived" {
			return nil
		}
	case "active":
		if newStatus == "completed" {
			return nil
		}
	case "completed":
		if newStatus == "archived" {
			return nil
		}
	}
	return fmt.Errorf("invalid cycle status transition %s -> %s", oldStatus, newStatus)
}

// SetCycleStatus advances a cycle through planning -> active -> completed ->
// archived.
func (e Engine) SetCycleStatus(ctx context.Context, cycleID, status, actorID string) (domain.Cycle, error) {
	c, err := e.Repo.GetCycle(ctx, cycleID)
	if err != nil {
		return c, err
	}
	if err := ensureCycleTransition(c.Status, status); err != nil {
		return c, err
	}
	from := c.Status
	c.Status = status
	c.UpdatedAt = e.nowStr()
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return c, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateCycle(ctx, tx, c); err != nil {
		return c, err
	}
	if err := e.Events.Append(ctx, tx, "cycle.updated", "cycle", c.ID, actorID, events.EventPayload{"from": from, "to": status}); err != nil {
		return c, err
	}
	return c, tx.Commit()
}

// AddTaskToCycle links a task into a cycle on both records.
func (e Engine) AddTaskToCycle(ctx context.Context, cycleID, taskID, actorID string) error {
	c, err := e.Repo.GetCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	now := e.nowStr()
	if !containsString(c.TaskIDs, taskID) {
		c.TaskIDs = append(c.TaskIDs, taskID)
		c.UpdatedAt = now
	}
	if !containsString(t.CycleIDs, cycleID) {
		t.CycleIDs = append(t.CycleIDs, cycleID)
		t.UpdatedAt = now
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateCycle(ctx, tx, c); err != nil {
		return err
	}
	if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
		return err
	}
	if err := e.Events.Append(ctx, tx, "cycle.task.added", "cycle", cycleID, actorID, events.EventPayload{"task": taskID}); err != nil {
		return err
	}
	return tx.Commit()
}

// findByCommand locates the destination reachable from the current status
// whose requirement names the invoked command. Destinations are scanned in
// sorted order so resolution is deterministic.
func (e Engine) findByCommand(from, command string) (string, *methodology.TransitionRequirement) {
	return e.findTransition(func(req methodology.TransitionRequirement) bool {
		return req.Command == command
	}, from)
}

func (e Engine) findByEvent(from, event string) (string, *methodology.TransitionRequirement) {
	return e.findTransition(func(req methodology.TransitionRequirement) bool {
		return req.Event == event
	}, from)
}

func (e Engine) findTransition(match func(methodology.TransitionRequirement) bool, from string) (string, *methodology.TransitionRequirement) {
	model := e.Flow.Model()
	var destinations []string
	for to := range model.StateTransitions {
		destinations = append(destinations, to)
	}
	sort.Strings(destinations)
	for _, to := range destinations {
		if !match(model.StateTransitions[to].Requires) {
			continue
		}
		if req := e.Flow.ResolveTransition(from, to, workflow.ValidationContext{}); req != nil {
			return to, req
		}
	}
	return "", nil
}

// validationContext assembles the entity data the workflow engine may need
// for one evaluation.
func (e Engine) validationContext(ctx context.Context, t domain.Task, to string) (workflow.ValidationContext, error) {
	feedbacks, err := e.Repo.ListFeedbackForEntity(ctx, "task", t.ID)
	if err != nil {
		return workflow.ValidationContext{}, err
	}
	cycles, err := e.Repo.CyclesForTask(ctx, t)
	if err != nil {
		return workflow.ValidationContext{}, err
	}
	sigs, err := e.Repo.ListSignatures(ctx, "task", t.ID)
	if err != nil {
		return workflow.ValidationContext{}, err
	}
	return workflow.ValidationContext{
		Task:         &t,
		Signatures:   sigs,
		TransitionTo: to,
		Feedbacks:    feedbacks,
		Cycles:       cycles,
	}, nil
}

// checkRequirement verifies quorum per signature group and all custom rules
// for a candidate transition. The workflow engine judges each signature in
// isolation; counting toward min_approvals happens here, over the record's
// full signature set.
func (e Engine) checkRequirement(ctx context.Context, t domain.Task, to string, req *methodology.TransitionRequirement) error {
	vctx, err := e.validationContext(ctx, t, to)
	if err != nil {
		return err
	}

	actors := map[string]*domain.Actor{}
	lookup := func(keyID string) *domain.Actor {
		if a, ok := actors[keyID]; ok {
			return a
		}
		a, err := e.Repo.GetActor(ctx, keyID)
		if err != nil {
			actors[keyID] = nil
			return nil
		}
		actors[keyID] = &a
		return &a
	}

	var groups []string
	for label := range req.Signatures {
		groups = append(groups, label)
	}
	sort.Strings(groups)
	for _, label := range groups {
		group := req.Signatures[label]
		signers := map[string]bool{}
		for _, sig := range vctx.Signatures {
			if sig.Role != group.Role || signers[sig.KeyID] {
				continue
			}
			sigCtx := vctx
			sigCtx.Actor = lookup(sig.KeyID)
			if e.Flow.IsSignatureEligibleForGroup(sig, label, sigCtx) {
				signers[sig.KeyID] = true
			}
		}
		if len(signers) < group.MinApprovals {
			return QuorumError{Group: label, Role: group.Role, Have: len(signers), Need: group.MinApprovals}
		}
	}

	if len(req.CustomRules) > 0 && !e.Flow.AreCustomRulesSatisfied(req.CustomRules, vctx) {
		return RuleError{Rules: req.CustomRules}
	}
	return nil
}

func (e Engine) applyTransition(ctx context.Context, t domain.Task, to, actorID, cause string) (domain.Task, error) {
	from := t.Status
	t.Status = to
	t.UpdatedAt = e.nowStr()
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()
	if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
		return t, err
	}
	if err := e.Events.Append(ctx, tx, "task.transitioned", "task", t.ID, actorID, events.EventPayload{
		"from":  from,
		"to":    to,
		"cause": cause,
	}); err != nil {
		return t, err
	}
	return t, tx.Commit()
}

// SignTask produces a signature over the task's current checksum and submits
// it toward a command-gated transition. The returned bool reports whether the
// task moved.
func (e Engine) SignTask(ctx context.Context, taskID, role, command string, signer record.Signer) (domain.Task, bool, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return t, false, err
	}
	checksum, err := record.Checksum(t)
	if err != nil {
		return t, false, err
	}
	return e.SubmitSignature(ctx, taskID, command, signer.Sign(role, checksum, e.now()))
}

// SubmitSignature verifies, records, and counts one externally produced
// signature, advancing the task when the full transition requirement is now
// satisfied.
func (e Engine) SubmitSignature(ctx context.Context, taskID, command string, sig domain.Signature) (domain.Task, bool, error) {
	actorID := sig.KeyID
	role := sig.Role
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return t, false, err
	}
	actor, err := e.Repo.GetActor(ctx, actorID)
	if err != nil {
		return t, false, err
	}
	if actor.Status != "active" {
		return t, false, fmt.Errorf("actor %s is %s", actorID, actor.Status)
	}
	to, req := e.findByCommand(t.Status, command)
	if req == nil {
		return t, false, fmt.Errorf("no transition for command %q from status %s", command, t.Status)
	}

	checksum, err := record.Checksum(t)
	if err != nil {
		return t, false, err
	}

	// Integrity first: the workflow engine assumes verified signatures.
	pub, err := e.Repo.PublicKey(ctx, actorID)
	if err != nil {
		return t, false, fmt.Errorf("actor %s has no signing key: %w", actorID, err)
	}
	if err := record.Verify(pub, sig, checksum); err != nil {
		return t, false, err
	}

	vctx, err := e.validationContext(ctx, t, to)
	if err != nil {
		return t, false, err
	}
	vctx.Actor = &actor
	if !e.Flow.IsSignatureEligible(sig, vctx) {
		return t, false, IneligibleError{ActorID: actorID, Role: role}
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return t, false, err
	}
	defer tx.Rollback()
	// Duplicate check and insert share the transaction so two submissions
	// of the same key/role cannot both pass the check.
	already, err := e.Repo.HasSignature(ctx, tx, "task", t.ID, actorID, role)
	if err != nil {
		return t, false, err
	}
	if already {
		return t, false, fmt.Errorf("actor %s already signed task %s as %s", actorID, t.ID, role)
	}
	if err := e.Repo.InsertSignature(ctx, tx, "task", t.ID, sig); err != nil {
		return t, false, err
	}
	if err := e.Events.Append(ctx, tx, "signature.added", "task", t.ID, actorID, events.EventPayload{"role": role, "transition_to": to}); err != nil {
		return t, false, err
	}
	if err := tx.Commit(); err != nil {
		return t, false, err
	}

	if err := e.checkRequirement(ctx, t, to, req); err != nil {
		var quorum QuorumError
		var rule RuleError
		if errors.As(err, &quorum) || errors.As(err, &rule) {
			// Signature accepted; the transition waits for the rest.
			return t, false, nil
		}
		return t, false, err
	}
	t, err = e.applyTransition(ctx, t, to, actorID, command)
	return t, err == nil, err
}

// CheckEligibility reports whether the actor could sign with the given role
// toward the transition triggered by command, without producing a signature.
// The second return is the destination status, empty when no transition
// matches the command.
func (e Engine) CheckEligibility(ctx context.Context, taskID, actorID, role, command string) (bool, string, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return false, "", err
	}
	to, req := e.findByCommand(t.Status, command)
	if req == nil {
		return false, "", nil
	}
	vctx, err := e.validationContext(ctx, t, to)
	if err != nil {
		return false, "", err
	}
	if actor, err := e.Repo.GetActor(ctx, actorID); err == nil {
		vctx.Actor = &actor
	}
	return e.Flow.IsSignatureEligible(domain.Signature{KeyID: actorID, Role: role}, vctx), to, nil
}

// RunCommand attempts a command-gated transition using only the signatures
// already on the record.
func (e Engine) RunCommand(ctx context.Context, taskID, command, actorID string) (domain.Task, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return t, err
	}
	to, req := e.findByCommand(t.Status, command)
	if req == nil {
		return t, fmt.Errorf("no transition for command %q from status %s", command, t.Status)
	}
	if err := e.checkRequirement(ctx, t, to, req); err != nil {
		return t, err
	}
	return e.applyTransition(ctx, t, to, actorID, command)
}

// ApplyEvent attempts an event-gated transition (activation, pause, resume,
// archival).
func (e Engine) ApplyEvent(ctx context.Context, taskID, event, actorID string) (domain.Task, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return t, err
	}
	to, req := e.findByEvent(t.Status, event)
	if req == nil {
		return t, fmt.Errorf("no transition for event %q from status %s", event, t.Status)
	}
	if err := e.checkRequirement(ctx, t, to, req); err != nil {
		return t, err
	}
	return e.applyTransition(ctx, t, to, actorID, event)
}

// ForceTransition moves a task along a declared edge without evaluating its
// requirements. The edge itself must still exist.
func (e Engine) ForceTransition(ctx context.Context, taskID, to, actorID string) (domain.Task, error) {
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return t, err
	}
	if e.Flow.ResolveTransition(t.Status, to, workflow.ValidationContext{}) == nil {
		return t, TransitionError{From: t.Status, To: to}
	}
	return e.applyTransition(ctx, t, to, actorID, "force")
}

// BoardColumn is one rendered column of a projected view.
type BoardColumn struct {
	Label  string        `json:"label"`
	States []string      `json:"states"`
	Tasks  []domain.Task `json:"tasks"`
}

// Board projects a view and fills its columns with the indexed tasks.
// Columns are sorted by label for stable rendering.
func (e Engine) Board(ctx context.Context, viewName string) ([]BoardColumn, error) {
	view := e.Flow.ProjectView(viewName)
	if view == nil {
		return nil, fmt.Errorf("view %s: %w", viewName, repo.ErrNotFound)
	}
	tasks, err := e.Repo.ListTasks(ctx, "")
	if err != nil {
		return nil, err
	}
	byStatus := map[string][]domain.Task{}
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}
	var labels []string
	for label := range view.Columns {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	columns := make([]BoardColumn, 0, len(labels))
	for _, label := range labels {
		col := BoardColumn{Label: label, States: view.Columns[label]}
		for _, state := range col.States {
			col.Tasks = append(col.Tasks, byStatus[state]...)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
