// Package server exposes the governance engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"govline/internal/domain"
	"govline/internal/engine"
	"govline/internal/methodology"
	"govline/internal/record"
	"govline/internal/repo"
	"govline/internal/workflow"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"quorum_not_met"`
	Message string         `json:"message" example:"transition needs 2 approvals, has 1"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the govline API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth, cfg.Engine.Repo))
	hcfg := huma.DefaultConfig("Govline API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group)
	registerStatus(group, cfg.Engine)
	registerMethodology(group, cfg.Engine)
	registerActors(group, cfg.Engine)
	registerTasks(group, cfg.Engine)
	registerCycles(group, cfg.Engine)
	registerFeedback(group, cfg.Engine)
	registerBoard(group, cfg.Engine)
	registerEvents(group, cfg.Engine)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{status: status, Body: apiErrorBody{Code: code, Message: message, Details: details}}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var te engine.TransitionError
	if errors.As(err, &te) {
		return newAPIError(http.StatusConflict, "invalid_transition", err.Error(), map[string]any{"from": te.From, "to": te.To})
	}
	var ie engine.IneligibleError
	if errors.As(err, &ie) {
		return newAPIError(http.StatusForbidden, "ineligible_signature", err.Error(), map[string]any{"actor_id": ie.ActorID, "role": ie.Role})
	}
	var qe engine.QuorumError
	if errors.As(err, &qe) {
		return newAPIError(http.StatusUnprocessableEntity, "quorum_not_met", err.Error(), map[string]any{
			"group": qe.Group, "role": qe.Role, "have": qe.Have, "need": qe.Need,
		})
	}
	var re engine.RuleError
	if errors.As(err, &re) {
		return newAPIError(http.StatusUnprocessableEntity, "rules_not_satisfied", err.Error(), map[string]any{"rules": re.Rules})
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	switch {
	case strings.Contains(lowered, "no transition"),
		strings.Contains(lowered, "already signed"),
		strings.Contains(lowered, "invalid cycle status"):
		return newAPIError(http.StatusConflict, "conflict", msg, nil)
	case strings.Contains(lowered, "verification"),
		strings.Contains(lowered, "checksum"):
		return newAPIError(http.StatusUnprocessableEntity, "signature_invalid", msg, nil)
	case strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required"):
		return newAPIError(http.StatusBadRequest, "bad_request", msg, nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": msg})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "validation_failed"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerStatus(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Project status",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]any `json:"body"`
	}, error) {
		counts, err := e.Repo.CountTasksByStatus(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		model := e.Flow.Model()
		return &struct {
			Body map[string]any `json:"body"`
		}{Body: map[string]any{
			"project_id":  e.Config.Project.ID,
			"methodology": model.Name,
			"task_counts": counts,
		}}, nil
	})
}

func registerMethodology(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-methodology",
		Method:      http.MethodGet,
		Path:        "/methodology",
		Summary:     "Active methodology",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body *methodology.Model `json:"body"`
	}, error) {
		return &struct {
			Body *methodology.Model `json:"body"`
		}{Body: e.Flow.Model()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-methodology-states",
		Method:      http.MethodGet,
		Path:        "/methodology/states",
		Summary:     "States of the active methodology",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []string `json:"body"`
	}, error) {
		return &struct {
			Body []string `json:"body"`
		}{Body: e.Flow.Model().States()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "validate-methodology",
		Method:      http.MethodPost,
		Path:        "/methodology/validate",
		Summary:     "Validate a methodology document",
		Errors:      []int{http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		RawBody []byte `contentType:"application/json"`
	}) (*struct {
		Body map[string]any `json:"body"`
	}, error) {
		if _, err := methodology.FromJSON(input.RawBody); err != nil {
			return nil, newAPIError(http.StatusUnprocessableEntity, "invalid_methodology", err.Error(), nil)
		}
		return &struct {
			Body map[string]any `json:"body"`
		}{Body: map[string]any{"valid": true}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-transition",
		Method:      http.MethodGet,
		Path:        "/methodology/transitions",
		Summary:     "Resolve a transition requirement",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		From string `query:"from" required:"true"`
		To   string `query:"to" required:"true"`
	}) (*struct {
		Body TransitionResponse `json:"body"`
	}, error) {
		req := e.Flow.ResolveTransition(input.From, input.To, workflow.ValidationContext{})
		if req == nil {
			return nil, newAPIError(http.StatusNotFound, "no_transition", "transition is not allowed", map[string]any{"from": input.From, "to": input.To})
		}
		resp := TransitionResponse{
			From:        input.From,
			To:          input.To,
			Command:     req.Command,
			Event:       req.Event,
			CustomRules: req.CustomRules,
		}
		if len(req.Signatures) > 0 {
			resp.Signatures = map[string]sigGroup{}
			for label, g := range req.Signatures {
				resp.Signatures[label] = sigGroup{
					Role:            g.Role,
					CapabilityRoles: g.CapabilityRoles,
					MinApprovals:    g.MinApprovals,
					ActorType:       g.ActorType,
					SpecificActors:  g.SpecificActors,
				}
			}
		}
		return &struct {
			Body TransitionResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func registerActors(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-actor",
		Method:        http.MethodPost,
		Path:          "/actors",
		Summary:       "Register actor",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		Body CreateActorRequest `json:"body"`
	}) (*struct {
		Body ActorResponse `json:"body"`
	}, error) {
		a, err := e.CreateActor(ctx, domain.Actor{
			ID:          input.Body.ID,
			Type:        input.Body.Type,
			DisplayName: input.Body.DisplayName,
			PublicKey:   input.Body.PublicKey,
			Roles:       input.Body.Roles,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ActorResponse `json:"body"`
		}{Body: actorResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-actors",
		Method:      http.MethodGet,
		Path:        "/actors",
		Summary:     "List actors",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ActorResponse `json:"body"`
	}, error) {
		actors, err := e.Repo.ListActors(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]ActorResponse, 0, len(actors))
		for _, a := range actors {
			out = append(out, actorResponse(a))
		}
		return &struct {
			Body []ActorResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-api-key",
		Method:        http.MethodPost,
		Path:          "/api-keys",
		Summary:       "Mint an API key for an actor",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Body CreateAPIKeyRequest `json:"body"`
	}) (*struct {
		Body CreateAPIKeyResponse `json:"body"`
	}, error) {
		if input.Body.ActorID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "actor_id is required", nil)
		}
		plaintext, key, err := e.CreateAPIKey(ctx, input.Body.ActorID, input.Body.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CreateAPIKeyResponse `json:"body"`
		}{Body: CreateAPIKeyResponse{ID: key.ID, ActorID: key.ActorID, Key: plaintext}}, nil
	})
}

func registerTasks(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		t, err := e.CreateTask(ctx, engine.TaskCreateOptions{
			ID:          input.Body.ID,
			Title:       input.Body.Title,
			Priority:    input.Body.Priority,
			Description: input.Body.Description,
			Tags:        input.Body.Tags,
			ActorID:     actorID,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks",
		Summary:     "List tasks",
	}, func(ctx context.Context, input *struct {
		Status string `query:"status"`
	}) (*struct {
		Body []TaskResponse `json:"body"`
	}, error) {
		tasks, err := e.Repo.ListTasks(ctx, input.Status)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []TaskResponse `json:"body"`
		}{Body: mapTasks(tasks)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}",
		Summary:     "Get task",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		t, err := e.Repo.GetTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "assign-task",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/assign",
		Summary:     "Assign task",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			AssigneeID string `json:"assignee_id"`
		} `json:"body"`
	}) (*struct {
		Body FeedbackResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.AssigneeID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "assignee_id is required", nil)
		}
		fb, err := e.AssignTask(ctx, input.ID, input.Body.AssigneeID, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FeedbackResponse `json:"body"`
		}{Body: feedbackResponse(fb)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "submit-signature",
		Method:        http.MethodPost,
		Path:          "/tasks/{id}/signatures",
		Summary:       "Submit a signature toward a transition",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusForbidden,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		ID   string                 `path:"id"`
		Body SubmitSignatureRequest `json:"body"`
	}) (*struct {
		Body SubmitSignatureResponse `json:"body"`
	}, error) {
		if input.Body.Command == "" || input.Body.KeyID == "" || input.Body.Role == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "command, key_id and role are required", nil)
		}
		t, moved, err := e.SubmitSignature(ctx, input.ID, input.Body.Command, domain.Signature{
			KeyID:     input.Body.KeyID,
			Role:      input.Body.Role,
			Digest:    input.Body.Digest,
			Signature: input.Body.Signature,
			SignedAt:  input.Body.SignedAt,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SubmitSignatureResponse `json:"body"`
		}{Body: SubmitSignatureResponse{Task: taskResponse(t), Transferred: moved}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-signatures",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/signatures",
		Summary:     "List task signatures",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body []SignatureResponse `json:"body"`
	}, error) {
		sigs, err := e.Repo.ListSignatures(ctx, "task", input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]SignatureResponse, 0, len(sigs))
		for _, s := range sigs {
			out = append(out, SignatureResponse{KeyID: s.KeyID, Role: s.Role, Digest: s.Digest, SignedAt: s.SignedAt})
		}
		return &struct {
			Body []SignatureResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "check-eligibility",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/eligibility",
		Summary:     "Check signature eligibility",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID      string `path:"id"`
		ActorID string `query:"actor_id" required:"true"`
		Role    string `query:"role" required:"true"`
		Command string `query:"command" required:"true"`
	}) (*struct {
		Body EligibilityResponse `json:"body"`
	}, error) {
		ok, to, err := e.CheckEligibility(ctx, input.ID, input.ActorID, input.Role, input.Command)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body EligibilityResponse `json:"body"`
		}{Body: EligibilityResponse{Eligible: ok, TransitionTo: to}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "record-execution",
		Method:        http.MethodPost,
		Path:          "/tasks/{id}/executions",
		Summary:       "Record an execution report",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string                 `path:"id"`
		Body RecordExecutionRequest `json:"body"`
	}) (*struct {
		Body ExecutionResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		ex, err := e.RecordExecution(ctx, domain.Execution{
			TaskID: input.ID,
			Type:   input.Body.Type,
			Title:  input.Body.Title,
			Result: input.Body.Result,
		}, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ExecutionResponse `json:"body"`
		}{Body: executionResponse(ex)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-executions",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/executions",
		Summary:     "List a task's execution reports",
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body []ExecutionResponse `json:"body"`
	}, error) {
		execs, err := e.Repo.ListExecutions(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]ExecutionResponse, 0, len(execs))
		for _, ex := range execs {
			out = append(out, executionResponse(ex))
		}
		return &struct {
			Body []ExecutionResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "export-task",
		Method:      http.MethodGet,
		Path:        "/tasks/{id}/export",
		Summary:     "Export a task as a signed record envelope",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body record.Envelope `json:"body"`
	}, error) {
		env, err := e.ExportTask(ctx, input.ID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body record.Envelope `json:"body"`
		}{Body: env}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "run-command",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/commands",
		Summary:     "Attempt a command-gated transition",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Command string `json:"command"`
		} `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.Command == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "command is required", nil)
		}
		t, err := e.RunCommand(ctx, input.ID, input.Body.Command, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "apply-event",
		Method:      http.MethodPost,
		Path:        "/tasks/{id}/events",
		Summary:     "Attempt an event-gated transition",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusNotFound,
			http.StatusConflict,
			http.StatusUnprocessableEntity,
		},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Event string `json:"event"`
		} `json:"body"`
	}) (*struct {
		Body TaskResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.Event == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "event is required", nil)
		}
		t, err := e.ApplyEvent(ctx, input.ID, input.Body.Event, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TaskResponse `json:"body"`
		}{Body: taskResponse(t)}, nil
	})
}

func registerCycles(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-cycle",
		Method:        http.MethodPost,
		Path:          "/cycles",
		Summary:       "Create cycle",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateCycleRequest `json:"body"`
	}) (*struct {
		Body CycleResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := e.CreateCycle(ctx, domain.Cycle{ID: input.Body.ID, Title: input.Body.Title, Notes: input.Body.Notes}, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CycleResponse `json:"body"`
		}{Body: cycleResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-cycles",
		Method:      http.MethodGet,
		Path:        "/cycles",
		Summary:     "List cycles",
	}, func(ctx context.Context, input *struct {
		Status string `query:"status"`
	}) (*struct {
		Body []CycleResponse `json:"body"`
	}, error) {
		cycles, err := e.Repo.ListCycles(ctx, input.Status)
		if err != nil {
			return nil, handleError(err)
		}
		out := make([]CycleResponse, 0, len(cycles))
		for _, c := range cycles {
			out = append(out, cycleResponse(c))
		}
		return &struct {
			Body []CycleResponse `json:"body"`
		}{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-cycle-status",
		Method:      http.MethodPatch,
		Path:        "/cycles/{id}/status",
		Summary:     "Update cycle status",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound, http.StatusConflict},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			Status string `json:"status"`
		} `json:"body"`
	}) (*struct {
		Body CycleResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.Status == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "status is required", nil)
		}
		c, err := e.SetCycleStatus(ctx, input.ID, input.Body.Status, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CycleResponse `json:"body"`
		}{Body: cycleResponse(c)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-cycle-task",
		Method:      http.MethodPost,
		Path:        "/cycles/{id}/tasks",
		Summary:     "Add task to cycle",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   string `path:"id"`
		Body struct {
			TaskID string `json:"task_id"`
		} `json:"body"`
	}) (*struct{}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if input.Body.TaskID == "" {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "task_id is required", nil)
		}
		if err := e.AddTaskToCycle(ctx, input.ID, input.Body.TaskID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerFeedback(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-feedback",
		Method:        http.MethodPost,
		Path:          "/feedback",
		Summary:       "Create feedback",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateFeedbackRequest `json:"body"`
	}) (*struct {
		Body FeedbackResponse `json:"body"`
	}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		fb := domain.Feedback{
			EntityType: input.Body.EntityType,
			EntityID:   input.Body.EntityID,
			Type:       input.Body.Type,
			Content:    input.Body.Content,
		}
		if input.Body.AssigneeID != "" {
			fb.AssigneeID = &input.Body.AssigneeID
		}
		fb, err := e.CreateFeedback(ctx, fb, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FeedbackResponse `json:"body"`
		}{Body: feedbackResponse(fb)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "resolve-feedback",
		Method:      http.MethodPost,
		Path:        "/feedback/{id}/resolve",
		Summary:     "Resolve feedback",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct{}, error) {
		actorID, authErr := actorIDFromContext(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.ResolveFeedback(ctx, input.ID, actorID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerBoard(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "board",
		Method:      http.MethodGet,
		Path:        "/board/{view}",
		Summary:     "Project a view of the tasks",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		View string `path:"view"`
	}) (*struct {
		Body BoardResponse `json:"body"`
	}, error) {
		columns, err := e.Board(ctx, input.View)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body BoardResponse `json:"body"`
		}{Body: BoardResponse{View: input.View, Columns: columns}}, nil
	})
}

func registerEvents(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Event log",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" default:"50"`
	}) (*struct {
		Body []repo.EventRow `json:"body"`
	}, error) {
		rows, err := e.Repo.ListEvents(ctx, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []repo.EventRow `json:"body"`
		}{Body: rows}, nil
	})
}
