package repo

import (
	"context"
	"database/sql"

	"govline/internal/domain"
)

// InsertSignature stores one signature attached to a record.
func (r Repo) InsertSignature(ctx context.Context, tx *sql.Tx, entityKind, entityID string, sig domain.Signature) error {
	_, err := r.exec(tx).ExecContext(ctx,
		`INSERT INTO signatures(entity_kind,entity_id,key_id,role,digest,signature,signed_at) VALUES (?,?,?,?,?,?,?)`,
		entityKind, entityID, sig.KeyID, sig.Role, sig.Digest, sig.Signature, sig.SignedAt)
	return err
}

// ListSignatures returns every signature attached to one record, oldest
// first.
func (r Repo) ListSignatures(ctx context.Context, entityKind, entityID string) ([]domain.Signature, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT key_id,role,digest,signature,signed_at FROM signatures WHERE entity_kind=? AND entity_id=? ORDER BY id`,
		entityKind, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Signature
	for rows.Next() {
		var s domain.Signature
		if err := rows.Scan(&s.KeyID, &s.Role, &s.Digest, &s.Signature, &s.SignedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// HasSignature reports whether an actor already signed a record in a role,
// so a signer cannot count twice toward the same quorum. Pass the insert's
// transaction to make check-then-insert atomic; the unique index on
// signatures backstops racing writers outside any transaction.
func (r Repo) HasSignature(ctx context.Context, tx *sql.Tx, entityKind, entityID, keyID, role string) (bool, error) {
	row := r.query(tx).QueryRowContext(ctx,
		`SELECT 1 FROM signatures WHERE entity_kind=? AND entity_id=? AND key_id=? AND role=? LIMIT 1`,
		entityKind, entityID, keyID, role)
	var n int
	err := row.Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
