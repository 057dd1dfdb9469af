package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"govline/internal/app"
	"govline/internal/db"
	"govline/internal/domain"
	"govline/internal/engine"
	"govline/internal/methodology"
	"govline/internal/record"
	"govline/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "gv",
	Short: "Govline CLI",
	Long: `Govline governs project work with signed records and a declarative methodology.
- Workspace: your project directory with govline.yml and a .govline/ index.
- Methodology: the rulebook; it declares which status moves exist, which
  commands or events trigger them, who must sign, and which custom rules hold.
- Tasks: work items moving draft -> review -> ready -> active -> done -> archived,
  with paused and discarded as side exits.
- Signatures: ed25519 proof over a record checksum; quorums of eligible
  signers unlock transitions.
- Cycles: planning periods tasks belong to (sprints).
- Feedback: review notes and assignments attached to records.
- Event log: diary of changes, view with 'gv log tail'.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("GOVLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor", "", "acting identity (defaults to config actors.default)")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor", rootCmd.PersistentFlags().Lookup("actor"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(methodologyCmd())
	rootCmd.AddCommand(actorCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(cycleCmd())
	rootCmd.AddCommand(feedbackCmd())
	rootCmd.AddCommand(boardCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(serveCmd())
}

func initCmd() *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Init(cmd.Context(), viper.GetString("workspace"), projectID)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Printf("Initialized %s (project %s, methodology preset %s)\n",
				a.Workspace, a.Config.Project.ID, a.Config.Methodology.Preset)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "project id (defaults to directory name)")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				counts, err := a.Engine.Repo.CountTasksByStatus(ctx)
				if err != nil {
					return err
				}
				model := a.Engine.Flow.Model()
				out := map[string]any{
					"project_id":  a.Config.Project.ID,
					"methodology": model.Name,
					"index":       db.Path(a.Workspace),
					"task_counts": counts,
				}
				if viper.GetBool("json") {
					return printJSON(out)
				}
				fmt.Printf("Project: %s\n", a.Config.Project.ID)
				fmt.Printf("Methodology: %s (%s)\n", model.Name, model.Version)
				fmt.Printf("Index: %s\n", db.Path(a.Workspace))
				fmt.Println("Tasks:")
				for _, state := range model.States() {
					if c := counts[state]; c > 0 {
						fmt.Printf("  %s: %d\n", state, c)
					}
				}
				return nil
			})
		},
	}
}

func methodologyCmd() *cobra.Command {
	m := &cobra.Command{
		Use:   "methodology",
		Short: "Inspect the active methodology",
	}
	m.AddCommand(methodologyShowCmd())
	m.AddCommand(methodologyStatesCmd())
	m.AddCommand(methodologyValidateCmd())
	return m
}

func methodologyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved methodology",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				return printJSONOrTable(a.Engine.Flow.Model())
			})
		},
	}
}

func methodologyStatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "List workflow states",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				return printJSONOrTable(a.Engine.Flow.Model().States())
			})
		},
	}
}

func methodologyValidateCmd() *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a methodology document",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := methodology.FromFile(filePath)
			if err != nil {
				if viper.GetBool("json") {
					return printJSON(map[string]any{"valid": false, "error": err.Error()})
				}
				return err
			}
			if viper.GetBool("json") {
				return printJSON(map[string]any{"valid": true, "name": m.Name, "version": m.Version})
			}
			fmt.Printf("%s %s OK (%d states)\n", m.Name, m.Version, len(m.States()))
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to methodology JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func actorCmd() *cobra.Command {
	a := &cobra.Command{
		Use:   "actor",
		Short: "Manage actors and their keys",
	}
	a.AddCommand(actorAddCmd())
	a.AddCommand(actorListCmd())
	a.AddCommand(actorRolesCmd())
	a.AddCommand(actorRevokeCmd())
	a.AddCommand(actorKeyCmd())
	return a
}

func actorRolesCmd() *cobra.Command {
	var roles []string
	cmd := &cobra.Command{
		Use:   "set-roles <actor-id>",
		Short: "Replace an actor's capability roles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				if err := a.Engine.UpdateActorRoles(ctx, args[0], roles); err != nil {
					return err
				}
				actor, err := a.Engine.Repo.GetActor(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(actor)
			})
		},
	}
	cmd.Flags().StringArrayVar(&roles, "role", []string{}, "capability role (repeatable)")
	return cmd
}

func actorRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <actor-id>",
		Short: "Revoke an actor's signing rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				return a.Engine.RevokeActor(ctx, args[0], a.DefaultActor(viper.GetString("actor")))
			})
		},
	}
}

func actorAddCmd() *cobra.Command {
	var id, displayName string
	var roles []string
	var genKey bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an actor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				actor := domain.Actor{ID: id, DisplayName: displayName, Roles: roles}
				if strings.HasPrefix(id, "agent:") {
					actor.Type = domain.ActorAgent
				}
				if genKey {
					pub, priv, err := record.GenerateKey()
					if err != nil {
						return err
					}
					if err := record.SaveKey(workspaceDir(), id, priv); err != nil {
						return err
					}
					actor.PublicKey = record.EncodePublicKey(pub)
				}
				res, err := a.Engine.CreateActor(ctx, actor)
				if err != nil {
					return err
				}
				return printJSONOrTable(res)
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "actor id, e.g. human:alice or agent:ci")
	cmd.Flags().StringVar(&displayName, "name", "", "display name")
	cmd.Flags().StringArrayVar(&roles, "role", []string{}, "capability role (repeatable)")
	cmd.Flags().BoolVar(&genKey, "gen-key", true, "generate and store a signing key")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func actorListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List actors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				actors, err := a.Engine.Repo.ListActors(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(actors)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Type", "Roles", "Status"})
				for _, actor := range actors {
					tw.AppendRow(table.Row{actor.ID, actor.Type, strings.Join(actor.Roles, ", "), actor.Status})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func actorKeyCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "api-key <actor-id>",
		Short: "Mint an API key for an actor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				plaintext, key, err := a.Engine.CreateAPIKey(ctx, args[0], name)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]string{"id": key.ID, "actor_id": key.ActorID, "key": plaintext})
				}
				fmt.Printf("API key for %s (shown once): %s\n", key.ActorID, plaintext)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "key label")
	return cmd
}

func taskCmd() *cobra.Command {
	task := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  "Tasks move along the methodology's transition graph. submit/approve/complete produce signatures; activate/pause/resume/archive emit lifecycle events; cancel discards.",
	}
	task.AddCommand(taskCreateCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskAssignCmd())
	task.AddCommand(signCommand("submit", "submitter", "gv task submit", "Submit a draft for review"))
	task.AddCommand(signCommand("approve", "approver", "gv task approve", "Approve a task under review"))
	task.AddCommand(signCommand("complete", "approver", "gv task complete", "Sign off an active task as done"))
	task.AddCommand(eventCommand("activate", "task.activated", "Activate a ready or paused task"))
	task.AddCommand(eventCommand("pause", "task.paused", "Pause an active task"))
	task.AddCommand(eventCommand("resume", "task.activated", "Resume a paused task"))
	task.AddCommand(eventCommand("archive", "task.archived", "Archive a done task"))
	task.AddCommand(taskCancelCmd())
	task.AddCommand(taskExecCmd())
	task.AddCommand(taskExportCmd())
	task.AddCommand(taskVerifyCmd())
	return task
}

func taskCreateCmd() *cobra.Command {
	var opts engine.TaskCreateOptions
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task in draft",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				opts.ActorID = a.DefaultActor(viper.GetString("actor"))
				t, err := a.Engine.CreateTask(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
	cmd.Flags().StringVar(&opts.ID, "id", "", "task id (optional)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title")
	cmd.Flags().StringVar(&opts.Priority, "priority", "", "priority (low, medium, high, critical)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().StringArrayVar(&opts.Tags, "tag", []string{}, "tag (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				tasks, err := a.Engine.Repo.ListTasks(ctx, status)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(tasks)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Title", "Status", "Assignee"})
				for _, t := range tasks {
					assignee := ""
					if t.AssigneeID != nil {
						assignee = *t.AssigneeID
					}
					tw.AppendRow(table.Row{t.ID, t.Title, t.Status, assignee})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	return cmd
}

func taskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its signatures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				t, err := a.Engine.Repo.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				sigs, err := a.Engine.Repo.ListSignatures(ctx, "task", t.ID)
				if err != nil {
					return err
				}
				return printJSONOrTable(map[string]any{"task": t, "signatures": sigs})
			})
		},
	}
}

func taskAssignCmd() *cobra.Command {
	var assignee string
	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Assign a task (opens an assignment feedback)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				fb, err := a.Engine.AssignTask(ctx, args[0], assignee, a.DefaultActor(viper.GetString("actor")))
				if err != nil {
					return err
				}
				return printJSONOrTable(fb)
			})
		},
	}
	cmd.Flags().StringVar(&assignee, "to", "", "assignee actor id")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// signCommand builds a task subcommand that signs with the workspace key and
// submits toward the named governance command.
func signCommand(use, role, command, short string) *cobra.Command {
	var asRole string
	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				actorID := a.DefaultActor(viper.GetString("actor"))
				signer, err := a.Signer(actorID)
				if err != nil {
					return err
				}
				signRole := role
				if asRole != "" {
					signRole = asRole
				}
				t, moved, err := a.Engine.SignTask(ctx, args[0], signRole, command, signer)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{"task": t, "transitioned": moved})
				}
				if moved {
					fmt.Printf("%s signed as %s; task is now %s\n", actorID, signRole, t.Status)
				} else {
					fmt.Printf("%s signed as %s; task stays %s until the requirement is met\n", actorID, signRole, t.Status)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&asRole, "role", "", "override signature role")
	return cmd
}

func eventCommand(use, event, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				t, err := a.Engine.ApplyEvent(ctx, args[0], event, a.DefaultActor(viper.GetString("actor")))
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
}

func taskExecCmd() *cobra.Command {
	exec := &cobra.Command{
		Use:   "exec",
		Short: "Record and inspect execution reports",
	}
	var execType, title, result string
	add := &cobra.Command{
		Use:   "add <task-id>",
		Short: "Attach an execution report to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				ex := domain.Execution{TaskID: args[0], Type: execType, Title: title, Result: result}
				res, err := a.Engine.RecordExecution(ctx, ex, a.DefaultActor(viper.GetString("actor")))
				if err != nil {
					return err
				}
				return printJSONOrTable(res)
			})
		},
	}
	add.Flags().StringVar(&execType, "type", "progress", "execution type")
	add.Flags().StringVar(&title, "title", "", "short title")
	add.Flags().StringVar(&result, "result", "", "what happened")
	_ = add.MarkFlagRequired("result")
	list := &cobra.Command{
		Use:   "list <task-id>",
		Short: "List a task's execution reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				execs, err := a.Engine.Repo.ListExecutions(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSONOrTable(execs)
			})
		},
	}
	exec.AddCommand(add)
	exec.AddCommand(list)
	return exec
}

func taskExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <id>",
		Short: "Export a task as a signed record envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				env, err := a.Engine.ExportTask(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(env)
			})
		},
	}
}

func taskVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Verify a task's checksum and stored signatures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				if err := a.Engine.VerifyTask(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("ok: checksum and all signatures verified")
				return nil
			})
		},
	}
}

func taskCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Discard a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				t, err := a.Engine.RunCommand(ctx, args[0], "gv task cancel", a.DefaultActor(viper.GetString("actor")))
				if err != nil {
					return err
				}
				return printJSONOrTable(t)
			})
		},
	}
}

func cycleCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "cycle",
		Short: "Manage planning cycles",
	}
	c.AddCommand(cycleCreateCmd())
	c.AddCommand(cycleListCmd())
	c.AddCommand(cycleStatusCmd())
	c.AddCommand(cycleAddTaskCmd())
	return c
}

func cycleCreateCmd() *cobra.Command {
	var c domain.Cycle
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				res, err := a.Engine.CreateCycle(ctx, c, a.DefaultActor(viper.GetString("actor")))
				if err != nil {
					return err
				}
				return printJSONOrTable(res)
			})
		},
	}
	cmd.Flags().StringVar(&c.ID, "id", "", "cycle id (optional)")
	cmd.Flags().StringVar(&c.Title, "title", "", "title")
	cmd.Flags().StringVar(&c.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func cycleListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				cycles, err := a.Engine.Repo.ListCycles(ctx, status)
				if err != nil {
					return err
				}
				return printJSONOrTable(cycles)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	return cmd
}

func cycleStatusCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "set-status <id>",
		Short: "Update cycle status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				c, err := a.Engine.SetCycleStatus(ctx, args[0], status, a.DefaultActor(viper.GetString("actor")))
				if err != nil {
					return err
				}
				return printJSONOrTable(c)
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "new status (planning, active, completed, archived)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func cycleAddTaskCmd() *cobra.Command {
	var taskID string
	cmd := &cobra.Command{
		Use:   "add-task <cycle-id>",
		Short: "Add a task to a cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				return a.Engine.AddTaskToCycle(ctx, args[0], taskID, a.DefaultActor(viper.GetString("actor")))
			})
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "task id")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func feedbackCmd() *cobra.Command {
	f := &cobra.Command{
		Use:   "feedback",
		Short: "Manage feedback records",
	}
	f.AddCommand(feedbackCreateCmd())
	f.AddCommand(feedbackResolveCmd())
	return f
}

func feedbackCreateCmd() *cobra.Command {
	var fb domain.Feedback
	var assignee string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create feedback against a record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if assignee != "" {
				fb.AssigneeID = &assignee
			}
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				res, err := a.Engine.CreateFeedback(ctx, fb, a.DefaultActor(viper.GetString("actor")))
				if err != nil {
					return err
				}
				return printJSONOrTable(res)
			})
		},
	}
	cmd.Flags().StringVar(&fb.EntityType, "entity-type", "task", "entity type")
	cmd.Flags().StringVar(&fb.EntityID, "entity-id", "", "entity id")
	cmd.Flags().StringVar(&fb.Type, "type", "", "feedback type (assignment, blocking, suggestion, question, approval)")
	cmd.Flags().StringVar(&fb.Content, "content", "", "content")
	cmd.Flags().StringVar(&assignee, "assignee", "", "assignee actor id")
	_ = cmd.MarkFlagRequired("entity-id")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func feedbackResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				return a.Engine.ResolveFeedback(ctx, args[0], a.DefaultActor(viper.GetString("actor")))
			})
		},
	}
}

func boardCmd() *cobra.Command {
	var view string
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Render a projected view of the tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				columns, err := a.Engine.Board(ctx, view)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(columns)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				header := table.Row{}
				height := 0
				for _, col := range columns {
					header = append(header, col.Label)
					if len(col.Tasks) > height {
						height = len(col.Tasks)
					}
				}
				tw.AppendHeader(header)
				for i := 0; i < height; i++ {
					row := table.Row{}
					for _, col := range columns {
						if i < len(col.Tasks) {
							row = append(row, col.Tasks[i].Title)
						} else {
							row = append(row, "")
						}
					}
					tw.AppendRow(row)
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&view, "view", "default", "view name from the methodology")
	return cmd
}

func logCmd() *cobra.Command {
	lg := &cobra.Command{
		Use:   "log",
		Short: "Event log",
	}
	lg.AddCommand(logTailCmd())
	return lg
}

func logTailCmd() *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				events, err := a.Engine.Repo.ListEvents(ctx, n)
				if err != nil {
					return err
				}
				return printJSONOrTable(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	var noAuth bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.Context) error {
				authCfg := server.AuthConfig{
					JWTSecret: a.Config.Server.JWTSecret,
					Disabled:  noAuth,
				}
				if secret := os.Getenv("GOVLINE_JWT_SECRET"); secret != "" {
					authCfg.JWTSecret = secret
				}
				if !noAuth && authCfg.JWTSecret == "" {
					return fmt.Errorf("set server.jwt_secret or GOVLINE_JWT_SECRET, or pass --no-auth")
				}
				handler, err := server.New(server.Config{Engine: a.Engine, BasePath: basePath, Auth: authCfg})
				if err != nil {
					return err
				}
				srv := &http.Server{Addr: addr, Handler: handler}
				go func() {
					<-ctx.Done()
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					srv.Shutdown(shutdownCtx)
				}()
				fmt.Printf("Serving govline API on http://%s%s\n", addr, basePath)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "disable authentication (local use)")
	return cmd
}

// --- helpers ---

func workspaceDir() string {
	return filepath.Join(viper.GetString("workspace"), methodology.WorkspaceDir)
}

func withApp(ctx context.Context, fn func(context.Context, *app.Context) error) error {
	a, err := app.Open(ctx, viper.GetString("workspace"))
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
