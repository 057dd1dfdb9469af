package engine_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"govline/internal/config"
	"govline/internal/db"
	"govline/internal/domain"
	"govline/internal/engine"
	"govline/internal/methodology"
	"govline/internal/migrate"
	"govline/internal/record"
	"govline/internal/repo"
	"govline/internal/workflow"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// testClock hands out strictly increasing timestamps so records created in
// the same test never collide.
func testClock() func() time.Time {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func newTestEnv(t *testing.T, flow *workflow.Adapter) engine.Engine {
	t.Helper()
	if flow == nil {
		var err error
		flow, err = workflow.FromPreset("default")
		if err != nil {
			t.Fatalf("preset: %v", err)
		}
	}
	eng := engine.New(openTestDB(t), config.Default("test"), flow)
	eng.Now = testClock()
	return eng
}

// newSigner registers an actor with a fresh keypair and returns a signer
// bound to it.
func newSigner(t *testing.T, eng engine.Engine, id string, roles ...string) record.KeySigner {
	t.Helper()
	pub, priv, err := record.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	_, err = eng.CreateActor(context.Background(), domain.Actor{
		ID:        id,
		Type:      domain.ActorHuman,
		PublicKey: record.EncodePublicKey(pub),
		Roles:     roles,
	})
	if err != nil {
		t.Fatalf("create actor %s: %v", id, err)
	}
	return record.KeySigner{ID: id, Priv: priv}
}

func mustTask(t *testing.T, eng engine.Engine, title, actorID string) domain.Task {
	t.Helper()
	task, err := eng.CreateTask(context.Background(), engine.TaskCreateOptions{Title: title, ActorID: actorID})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestCreateTaskStartsDraft(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	newSigner(t, eng, "human:ana", "author")

	task := mustTask(t, eng, "Ship login flow", "human:ana")
	if task.Status != domain.StatusDraft {
		t.Fatalf("status = %s, want draft", task.Status)
	}

	rows, err := eng.Repo.ListEvents(ctx, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	var seen bool
	for _, row := range rows {
		if row.Type == "task.created" && row.EntityID == task.ID {
			seen = true
		}
	}
	if !seen {
		t.Fatal("task.created event not journaled")
	}
}

func TestFullLifecycle(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	product := newSigner(t, eng, "human:bob", "approver:product")
	quality := newSigner(t, eng, "human:eve", "approver:quality")

	task := mustTask(t, eng, "Ship login flow", author.ID)

	task, moved, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", author)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !moved || task.Status != domain.StatusReview {
		t.Fatalf("after submit: moved=%v status=%s", moved, task.Status)
	}

	task, moved, err = eng.SignTask(ctx, task.ID, "approver", "gv task approve", product)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if !moved || task.Status != domain.StatusReady {
		t.Fatalf("after approve: moved=%v status=%s", moved, task.Status)
	}

	task, err = eng.ApplyEvent(ctx, task.ID, "task.activated", author.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if task.Status != domain.StatusActive {
		t.Fatalf("after activate: status=%s", task.Status)
	}

	task, moved, err = eng.SignTask(ctx, task.ID, "approver", "gv task complete", quality)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !moved || task.Status != domain.StatusDone {
		t.Fatalf("after complete: moved=%v status=%s", moved, task.Status)
	}

	task, err = eng.ApplyEvent(ctx, task.ID, "task.archived", author.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if task.Status != domain.StatusArchived {
		t.Fatalf("after archive: status=%s", task.Status)
	}
}

func TestPauseAndResume(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	task := mustTask(t, eng, "Ship login flow", author.ID)

	task, err := eng.ForceTransition(ctx, task.ID, domain.StatusReview, author.ID)
	if err != nil {
		t.Fatalf("force to review: %v", err)
	}
	task, err = eng.ForceTransition(ctx, task.ID, domain.StatusActive, author.ID)
	if err == nil {
		t.Fatal("force review -> active should fail, no such edge")
	}
	var te engine.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("want TransitionError, got %v", err)
	}

	if err := withStatus(t, eng, task.ID, domain.StatusActive); err != nil {
		t.Fatal(err)
	}
	task, err = eng.ApplyEvent(ctx, task.ID, "task.paused", author.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if task.Status != domain.StatusPaused {
		t.Fatalf("status = %s, want paused", task.Status)
	}
	task, err = eng.ApplyEvent(ctx, task.ID, "task.activated", author.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if task.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active", task.Status)
	}
}

// withStatus bypasses governance to park a task in a status for a test.
func withStatus(t *testing.T, eng engine.Engine, taskID, status string) error {
	t.Helper()
	ctx := context.Background()
	task, err := eng.Repo.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	task.Status = status
	tx, err := eng.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := eng.Repo.UpdateTask(ctx, tx, task); err != nil {
		return err
	}
	return tx.Commit()
}

func quorumModel(t *testing.T) *methodology.Model {
	t.Helper()
	m, err := methodology.FromJSON([]byte(`{
	  "version": "1.0.0",
	  "name": "two-approvals",
	  "state_transitions": {
	    "review": {
	      "from": ["draft"],
	      "requires": {
	        "command": "gv task submit",
	        "signatures": {
	          "__default__": {"role": "submitter", "capability_roles": ["author"], "min_approvals": 1}
	        }
	      }
	    },
	    "ready": {
	      "from": ["review"],
	      "requires": {
	        "command": "gv task approve",
	        "signatures": {
	          "reviewers": {"role": "approver", "capability_roles": ["approver:product"], "min_approvals": 2}
	        }
	      }
	    }
	  }
	}`))
	if err != nil {
		t.Fatalf("parse model: %v", err)
	}
	return m
}

func TestQuorumAggregation(t *testing.T) {
	eng := newTestEnv(t, workflow.FromModel(quorumModel(t)))
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	first := newSigner(t, eng, "human:bob", "approver:product")
	second := newSigner(t, eng, "human:eve", "approver:product")

	task := mustTask(t, eng, "Ship login flow", author.ID)
	if _, _, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", author); err != nil {
		t.Fatalf("submit: %v", err)
	}

	task, moved, err := eng.SignTask(ctx, task.ID, "approver", "gv task approve", first)
	if err != nil {
		t.Fatalf("first approval: %v", err)
	}
	if moved {
		t.Fatal("task moved on 1 of 2 required approvals")
	}

	// The same key does not count twice.
	if _, _, err := eng.SignTask(ctx, task.ID, "approver", "gv task approve", first); err == nil {
		t.Fatal("duplicate signature accepted")
	} else if !strings.Contains(err.Error(), "already signed") {
		t.Fatalf("unexpected duplicate error: %v", err)
	}

	task, moved, err = eng.SignTask(ctx, task.ID, "approver", "gv task approve", second)
	if err != nil {
		t.Fatalf("second approval: %v", err)
	}
	if !moved || task.Status != domain.StatusReady {
		t.Fatalf("after quorum: moved=%v status=%s", moved, task.Status)
	}
}

func TestSignTaskIneligible(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	outsider := newSigner(t, eng, "human:mallory", "viewer")

	task := mustTask(t, eng, "Ship login flow", author.ID)
	_, _, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", outsider)
	var ie engine.IneligibleError
	if !errors.As(err, &ie) {
		t.Fatalf("want IneligibleError, got %v", err)
	}
	if ie.ActorID != outsider.ID {
		t.Fatalf("IneligibleError.ActorID = %s", ie.ActorID)
	}
}

func TestRunCommandReportsQuorum(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	task := mustTask(t, eng, "Ship login flow", author.ID)
	if err := withStatus(t, eng, task.ID, domain.StatusReview); err != nil {
		t.Fatal(err)
	}

	_, err := eng.RunCommand(ctx, task.ID, "gv task approve", author.ID)
	var qe engine.QuorumError
	if !errors.As(err, &qe) {
		t.Fatalf("want QuorumError, got %v", err)
	}
	if qe.Have != 0 || qe.Need != 1 {
		t.Fatalf("quorum = %d/%d, want 0/1", qe.Have, qe.Need)
	}
}

func TestCancelNeedsNoSignature(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	task := mustTask(t, eng, "Ship login flow", author.ID)

	task, err := eng.RunCommand(ctx, task.ID, "gv task cancel", author.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if task.Status != domain.StatusDiscarded {
		t.Fatalf("status = %s, want discarded", task.Status)
	}

	// Discarded is terminal in the default methodology.
	if _, err := eng.RunCommand(ctx, task.ID, "gv task submit", author.ID); err == nil {
		t.Fatal("transition out of discarded accepted")
	}
}

func TestScrumAssignmentGate(t *testing.T) {
	m, err := methodology.Preset("scrum")
	if err != nil {
		t.Fatalf("scrum preset: %v", err)
	}
	eng := newTestEnv(t, workflow.FromModel(m))
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	owner := newSigner(t, eng, "human:bob", "product-owner")

	task := mustTask(t, eng, "Ship login flow", author.ID)
	if _, _, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", author); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Signature is recorded but the sprint-assignment rule blocks the move.
	task, moved, err := eng.SignTask(ctx, task.ID, "approver", "gv task approve", owner)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if moved {
		t.Fatal("task approved without a resolved assignment")
	}
	if task.Status != domain.StatusReview {
		t.Fatalf("status = %s, want review", task.Status)
	}

	fb, err := eng.AssignTask(ctx, task.ID, author.ID, owner.ID)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := eng.RunCommand(ctx, task.ID, "gv task approve", owner.ID); err == nil {
		t.Fatal("open assignment should not satisfy the rule")
	}

	if err := eng.ResolveFeedback(ctx, fb.ID, author.ID); err != nil {
		t.Fatalf("resolve feedback: %v", err)
	}
	task, err = eng.RunCommand(ctx, task.ID, "gv task approve", owner.ID)
	if err != nil {
		t.Fatalf("approve after assignment: %v", err)
	}
	if task.Status != domain.StatusReady {
		t.Fatalf("status = %s, want ready", task.Status)
	}
}

func TestCycleLifecycle(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")

	cycle, err := eng.CreateCycle(ctx, domain.Cycle{Title: "Sprint 12"}, author.ID)
	if err != nil {
		t.Fatalf("create cycle: %v", err)
	}
	if cycle.Status != "planning" {
		t.Fatalf("status = %s, want planning", cycle.Status)
	}

	if _, err := eng.SetCycleStatus(ctx, cycle.ID, "completed", author.ID); err == nil {
		t.Fatal("planning -> completed accepted")
	}
	cycle, err = eng.SetCycleStatus(ctx, cycle.ID, "active", author.ID)
	if err != nil {
		t.Fatalf("activate cycle: %v", err)
	}

	task := mustTask(t, eng, "Ship login flow", author.ID)
	if err := eng.AddTaskToCycle(ctx, cycle.ID, task.ID, author.ID); err != nil {
		t.Fatalf("add task: %v", err)
	}
	task, err = eng.Repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(task.CycleIDs) != 1 || task.CycleIDs[0] != cycle.ID {
		t.Fatalf("task.CycleIDs = %v", task.CycleIDs)
	}
	cycle, err = eng.Repo.GetCycle(ctx, cycle.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cycle.TaskIDs) != 1 || cycle.TaskIDs[0] != task.ID {
		t.Fatalf("cycle.TaskIDs = %v", cycle.TaskIDs)
	}

	// Linking twice is a no-op.
	if err := eng.AddTaskToCycle(ctx, cycle.ID, task.ID, author.ID); err != nil {
		t.Fatal(err)
	}
	cycle, _ = eng.Repo.GetCycle(ctx, cycle.ID)
	if len(cycle.TaskIDs) != 1 {
		t.Fatalf("cycle.TaskIDs grew on relink: %v", cycle.TaskIDs)
	}
}

func TestBoard(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")

	draft := mustTask(t, eng, "First", author.ID)
	working := mustTask(t, eng, "Second", author.ID)
	if err := withStatus(t, eng, working.ID, domain.StatusActive); err != nil {
		t.Fatal(err)
	}

	columns, err := eng.Board(ctx, "default")
	if err != nil {
		t.Fatalf("board: %v", err)
	}
	find := func(label string) engine.BoardColumn {
		for _, c := range columns {
			if c.Label == label {
				return c
			}
		}
		t.Fatalf("column %q missing", label)
		return engine.BoardColumn{}
	}
	backlog := find("Backlog")
	if len(backlog.Tasks) != 1 || backlog.Tasks[0].ID != draft.ID {
		t.Fatalf("Backlog tasks = %v", backlog.Tasks)
	}
	progress := find("In Progress")
	if len(progress.Tasks) != 1 || progress.Tasks[0].ID != working.ID {
		t.Fatalf("In Progress tasks = %v", progress.Tasks)
	}

	if _, err := eng.Board(ctx, "no-such-view"); err == nil {
		t.Fatal("unknown view accepted")
	}
}

func TestExecutionReports(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	newSigner(t, eng, "human:ana", "author")
	task := mustTask(t, eng, "Instrument checkout funnel", "human:ana")

	_, err := eng.RecordExecution(ctx, domain.Execution{TaskID: task.ID}, "human:ana")
	if err == nil {
		t.Fatal("execution without result accepted")
	}

	ex, err := eng.RecordExecution(ctx, domain.Execution{
		TaskID: task.ID,
		Type:   "progress",
		Title:  "first pass",
		Result: "events wired for add-to-cart",
	}, "human:ana")
	if err != nil {
		t.Fatalf("record execution: %v", err)
	}
	if ex.ID == "" || ex.CreatedAt == "" {
		t.Fatalf("execution not stamped: %+v", ex)
	}

	execs, err := eng.Repo.ListExecutions(ctx, task.ID)
	if err != nil {
		t.Fatalf("list executions: %v", err)
	}
	if len(execs) != 1 || execs[0].Result != "events wired for add-to-cart" {
		t.Fatalf("executions = %+v", execs)
	}

	if _, err := eng.RecordExecution(ctx, domain.Execution{TaskID: "missing", Result: "x"}, "human:ana"); err == nil {
		t.Fatal("execution for unknown task accepted")
	}
}

func TestExportAndVerifyTask(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	ana := newSigner(t, eng, "human:ana", "author")
	task := mustTask(t, eng, "Rotate staging credentials", "human:ana")

	if err := eng.VerifyTask(ctx, task.ID); err != nil {
		t.Fatalf("verify unsigned task: %v", err)
	}

	task, moved, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", ana)
	if err != nil || !moved {
		t.Fatalf("submit: moved=%v err=%v", moved, err)
	}

	// The stored signature attests the draft state; the task has since
	// moved to review, and verification must still hold.
	if err := eng.VerifyTask(ctx, task.ID); err != nil {
		t.Fatalf("verify after transition: %v", err)
	}

	env, err := eng.ExportTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if env.Type != "task" || env.Checksum == "" {
		t.Fatalf("envelope = %+v", env)
	}
	if len(env.Signatures) != 1 || env.Signatures[0].KeyID != "human:ana" {
		t.Fatalf("envelope signatures = %+v", env.Signatures)
	}

	var exported domain.Task
	if err := json.Unmarshal(env.Payload, &exported); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if exported.ID != task.ID || exported.Status != domain.StatusReview {
		t.Fatalf("exported task = %+v", exported)
	}
}

func TestRevokedActorCannotSign(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	ana := newSigner(t, eng, "human:ana", "author")
	task := mustTask(t, eng, "Deprecate v1 endpoints", "human:ana")

	if err := eng.RevokeActor(ctx, "human:ana", "human:ana"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, _, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", ana); err == nil {
		t.Fatal("revoked actor signed")
	}
	if err := eng.RevokeActor(ctx, "human:ghost", "human:ana"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("revoke unknown actor: %v", err)
	}
}

func TestUpdateActorRolesChangesEligibility(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	newSigner(t, eng, "human:ana", "author")
	pat := newSigner(t, eng, "human:pat")
	task := mustTask(t, eng, "Harden webhook retries", "human:ana")

	ok, _, err := eng.CheckEligibility(ctx, task.ID, "human:pat", "submitter", "gv task submit")
	if err != nil {
		t.Fatalf("eligibility: %v", err)
	}
	if ok {
		t.Fatal("actor without author role reported eligible")
	}

	if err := eng.UpdateActorRoles(ctx, "human:pat", []string{"author"}); err != nil {
		t.Fatalf("set roles: %v", err)
	}
	ok, to, err := eng.CheckEligibility(ctx, task.ID, "human:pat", "submitter", "gv task submit")
	if err != nil {
		t.Fatalf("eligibility after roles: %v", err)
	}
	if !ok || to != domain.StatusReview {
		t.Fatalf("eligible=%v to=%s, want true review", ok, to)
	}

	if _, moved, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", pat); err != nil || !moved {
		t.Fatalf("submit after roles: moved=%v err=%v", moved, err)
	}
}

func dualGroupModel(t *testing.T) *methodology.Model {
	t.Helper()
	m, err := methodology.FromJSON([]byte(`{
	  "version": "1.0.0",
	  "name": "dual-approver",
	  "state_transitions": {
	    "review": {
	      "from": ["draft"],
	      "requires": {
	        "command": "gv task submit",
	        "signatures": {
	          "__default__": {"role": "submitter", "capability_roles": ["author"], "min_approvals": 1}
	        }
	      }
	    },
	    "ready": {
	      "from": ["review"],
	      "requires": {
	        "command": "gv task approve",
	        "signatures": {
	          "product": {"role": "approver", "capability_roles": ["approver:product"], "min_approvals": 1},
	          "quality": {"role": "approver", "capability_roles": ["approver:quality"], "min_approvals": 1}
	        }
	      }
	    }
	  }
	}`))
	if err != nil {
		t.Fatalf("parse model: %v", err)
	}
	return m
}

// Two groups share the role "approver". A signer eligible for one group
// must count toward that group only; the transition waits until each group
// reaches its own quorum.
func TestQuorumCountsPerGroup(t *testing.T) {
	eng := newTestEnv(t, workflow.FromModel(dualGroupModel(t)))
	ctx := context.Background()
	author := newSigner(t, eng, "human:ana", "author")
	quality := newSigner(t, eng, "human:quinn", "approver:quality")
	product := newSigner(t, eng, "human:pat", "approver:product")

	task := mustTask(t, eng, "Ship login flow", author.ID)
	if _, _, err := eng.SignTask(ctx, task.ID, "submitter", "gv task submit", author); err != nil {
		t.Fatalf("submit: %v", err)
	}

	task, moved, err := eng.SignTask(ctx, task.ID, "approver", "gv task approve", quality)
	if err != nil {
		t.Fatalf("quality approval: %v", err)
	}
	if moved || task.Status != domain.StatusReview {
		t.Fatalf("task moved with the product group unsatisfied: moved=%v status=%s", moved, task.Status)
	}

	_, err = eng.RunCommand(ctx, task.ID, "gv task approve", author.ID)
	var quorum engine.QuorumError
	if !errors.As(err, &quorum) {
		t.Fatalf("expected quorum error, got %v", err)
	}
	if quorum.Group != "product" || quorum.Have != 0 || quorum.Need != 1 {
		t.Fatalf("quorum = %+v, want product 0/1", quorum)
	}

	task, moved, err = eng.SignTask(ctx, task.ID, "approver", "gv task approve", product)
	if err != nil {
		t.Fatalf("product approval: %v", err)
	}
	if !moved || task.Status != domain.StatusReady {
		t.Fatalf("after both groups: moved=%v status=%s", moved, task.Status)
	}
}

// The unique index is the backstop for writers that race past the in-tx
// duplicate check: a second insert of the same key/role on one record must
// fail at the store.
func TestDuplicateSignatureRejectedByStore(t *testing.T) {
	eng := newTestEnv(t, nil)
	ctx := context.Background()
	newSigner(t, eng, "human:ana", "author")
	task := mustTask(t, eng, "Ship login flow", "human:ana")

	sig := domain.Signature{KeyID: "human:ana", Role: "submitter", Digest: "d", Signature: "s", SignedAt: "2025-03-01T09:00:00Z"}
	if err := eng.Repo.InsertSignature(ctx, nil, "task", task.ID, sig); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := eng.Repo.InsertSignature(ctx, nil, "task", task.ID, sig); err == nil {
		t.Fatal("second insert of the same key/role accepted")
	}

	ok, err := eng.Repo.HasSignature(ctx, nil, "task", task.ID, "human:ana", "submitter")
	if err != nil || !ok {
		t.Fatalf("has signature: ok=%v err=%v", ok, err)
	}
}
