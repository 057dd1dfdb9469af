package repo

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"encoding/base64"

	"govline/internal/domain"
)

func (r Repo) InsertActor(ctx context.Context, tx *sql.Tx, a domain.Actor) error {
	roles, err := encodeStrings(a.Roles)
	if err != nil {
		return err
	}
	_, err = r.exec(tx).ExecContext(ctx,
		`INSERT INTO actors(id,type,display_name,public_key,roles_json,status,created_at) VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.Type, nullable(a.DisplayName), nullable(a.PublicKey), roles, a.Status, a.CreatedAt)
	return err
}

func (r Repo) UpdateActorRoles(ctx context.Context, tx *sql.Tx, actorID string, capabilityRoles []string) error {
	roles, err := encodeStrings(capabilityRoles)
	if err != nil {
		return err
	}
	res, err := r.exec(tx).ExecContext(ctx, `UPDATE actors SET roles_json=? WHERE id=?`, roles, actorID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) RevokeActor(ctx context.Context, tx *sql.Tx, actorID string) error {
	res, err := r.exec(tx).ExecContext(ctx, `UPDATE actors SET status='revoked' WHERE id=?`, actorID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const actorColumns = `id,type,COALESCE(display_name,''),COALESCE(public_key,''),roles_json,status,created_at`

func scanActor(scan func(dest ...any) error) (domain.Actor, error) {
	var a domain.Actor
	var roles sql.NullString
	err := scan(&a.ID, &a.Type, &a.DisplayName, &a.PublicKey, &roles, &a.Status, &a.CreatedAt)
	if err != nil {
		return a, err
	}
	a.Roles, err = decodeStrings(roles)
	return a, err
}

func (r Repo) GetActor(ctx context.Context, id string) (domain.Actor, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+actorColumns+` FROM actors WHERE id=?`, id)
	a, err := scanActor(row.Scan)
	if err != nil {
		return a, wrapNotFound(err, "actor", id)
	}
	return a, nil
}

func (r Repo) ListActors(ctx context.Context) ([]domain.Actor, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+actorColumns+` FROM actors ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Actor
	for rows.Next() {
		a, err := scanActor(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PublicKey decodes the stored ed25519 public key for an actor, for record
// signature verification.
func (r Repo) PublicKey(ctx context.Context, actorID string) (ed25519.PublicKey, error) {
	a, err := r.GetActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if a.PublicKey == "" {
		return nil, ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(a.PublicKey)
	if err != nil {
		return nil, err
	}
	return ed25519.PublicKey(raw), nil
}
