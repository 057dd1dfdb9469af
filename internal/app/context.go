// Package app wires a workspace into a running engine: config, record index,
// signing keys, and the active methodology.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

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

// Context is an opened workspace.
type Context struct {
	Workspace string
	Config    *config.Config
	DB        *sql.DB
	Engine    engine.Engine
}

func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Init seeds a new workspace: govline.yml, the record index, and a signing
// key for the default actor. It is safe to re-run; existing files are kept.
func Init(ctx context.Context, workspace, projectID string) (*Context, error) {
	if projectID == "" {
		abs, err := filepath.Abs(workspace)
		if err != nil {
			return nil, err
		}
		projectID = filepath.Base(abs)
	}
	cfgPath := config.Path(workspace)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := os.WriteFile(cfgPath, []byte(config.GenerateDefault(projectID)), 0o644); err != nil {
			return nil, fmt.Errorf("write config: %w", err)
		}
	}
	appCtx, err := Open(ctx, workspace)
	if err != nil {
		return nil, err
	}
	if err := appCtx.ensureDefaultActor(ctx); err != nil {
		appCtx.Close()
		return nil, err
	}
	return appCtx, nil
}

// Open loads an initialized workspace.
func Open(ctx context.Context, workspace string) (*Context, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return nil, err
	}
	if err := migrate.Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	flow := flowFromConfig(workspace, cfg)
	return &Context{
		Workspace: workspace,
		Config:    cfg,
		DB:        conn,
		Engine:    engine.New(conn, cfg, flow),
	}, nil
}

// flowFromConfig picks the methodology source. A file reference wins over a
// preset; with neither set the project workspace is searched, falling back to
// the built-in default.
func flowFromConfig(workspace string, cfg *config.Config) *workflow.Adapter {
	if cfg.Methodology.File != "" {
		path := cfg.Methodology.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(workspace, path)
		}
		return workflow.WithProjectOverride(methodology.FileSource{Path: path})
	}
	if cfg.Methodology.Preset != "" {
		if flow, err := workflow.FromPreset(cfg.Methodology.Preset); err == nil {
			return flow
		}
	}
	return workflow.WithProjectOverride(methodology.ProjectSource{Start: workspace})
}

// ensureDefaultActor registers the config's default actor with a fresh
// signing key, plus any other actors named in the roles map (without keys).
func (c *Context) ensureDefaultActor(ctx context.Context) error {
	defaultID := c.Config.Actors.Default
	if defaultID == "" {
		defaultID = "human:local-user"
	}
	for actorID, roles := range c.Config.Actors.Roles {
		if _, err := c.Engine.Repo.GetActor(ctx, actorID); err == nil {
			continue
		} else if !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		a := domain.Actor{ID: actorID, Type: actorType(actorID), Roles: roles}
		if actorID == defaultID {
			pub, priv, err := record.GenerateKey()
			if err != nil {
				return err
			}
			workspaceDir, err := db.EnsureWorkspace(c.Workspace)
			if err != nil {
				return err
			}
			if err := record.SaveKey(workspaceDir, actorID, priv); err != nil {
				return fmt.Errorf("save key: %w", err)
			}
			a.PublicKey = record.EncodePublicKey(pub)
		}
		if _, err := c.Engine.CreateActor(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Signer loads the workspace signing key for an actor.
func (c *Context) Signer(actorID string) (record.KeySigner, error) {
	workspaceDir := filepath.Join(c.Workspace, methodology.WorkspaceDir)
	priv, err := record.LoadKey(workspaceDir, actorID)
	if err != nil {
		return record.KeySigner{}, fmt.Errorf("no signing key for %s: %w", actorID, err)
	}
	return record.KeySigner{ID: actorID, Priv: priv}, nil
}

// DefaultActor returns the acting identity: the explicit override when given,
// otherwise the config default.
func (c *Context) DefaultActor(override string) string {
	if override != "" {
		return override
	}
	if c.Config.Actors.Default != "" {
		return c.Config.Actors.Default
	}
	return "human:local-user"
}

func actorType(actorID string) string {
	if len(actorID) >= 6 && actorID[:6] == "agent:" {
		return domain.ActorAgent
	}
	return domain.ActorHuman
}
