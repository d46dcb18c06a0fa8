package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"

	kpool "github.com/KHUSHWANTsRathore11/driftgate/pkg/conn/db/postgres/pool"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	kdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/checkpoint/db"
	kerr "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/errors/dberrors/postgres"
)

type pgCheckpoint struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.CheckpointInterface {
	return &pgCheckpoint{pool: pool}
}

func (m *pgCheckpoint) Current(ctx context.Context, unitId string) (domain.RollbackCheckpoint, error) {
	cp := domain.RollbackCheckpoint{UnitId: unitId}
	if err := m.pool.QueryRow(
		ctx,
		`
		select "artifact_version", "environment_version", "reason", "created_at"
		from "rollback_checkpoint"
		where "unit_id" = $1 and "current"
		`,
		unitId,
	).Scan(
		&cp.ArtifactVersion, &cp.EnvironmentVersion, &cp.Reason, &cp.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RollbackCheckpoint{}, domain.NoCheckpoint{UnitId: unitId}
		}
		return domain.RollbackCheckpoint{}, err
	}
	return cp, nil
}

func (m *pgCheckpoint) CurrentAll(ctx context.Context) (map[string]domain.RollbackCheckpoint, error) {
	rows, err := m.pool.Query(
		ctx,
		`
		select "unit_id", "artifact_version", "environment_version", "reason", "created_at"
		from "rollback_checkpoint"
		where "current"
		order by "unit_id"
		`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cps := map[string]domain.RollbackCheckpoint{}
	for rows.Next() {
		var cp domain.RollbackCheckpoint
		if err := rows.Scan(
			&cp.UnitId, &cp.ArtifactVersion, &cp.EnvironmentVersion,
			&cp.Reason, &cp.CreatedAt,
		); err != nil {
			return nil, err
		}
		cps[cp.UnitId] = cp
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cps, nil
}

func (m *pgCheckpoint) Supersede(ctx context.Context, cp domain.RollbackCheckpoint) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// lock the unit's current row, if any. Two first-time writers for the
	// same unit have nothing to lock; the partial unique index below breaks
	// that tie and the loser maps to Conflict.
	if _, err := tx.Exec(
		ctx,
		`
		update "rollback_checkpoint" set "current" = false
		where "unit_id" = $1
			and "id" in (
				select "id" from "rollback_checkpoint"
				where "unit_id" = $1 and "current"
				for update
			)
		`,
		cp.UnitId,
	); err != nil {
		return err
	}

	if _, err := tx.Exec(
		ctx,
		`
		insert into "rollback_checkpoint" (
			"unit_id", "artifact_version", "environment_version",
			"reason", "created_at", "current"
		)
		values ($1, $2, $3, $4, now(), true)
		`,
		cp.UnitId, cp.ArtifactVersion, cp.EnvironmentVersion, cp.Reason,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return kerr.Conflict{
				Table:    "rollback_checkpoint",
				Identity: fmt.Sprintf("unit_id = %s", cp.UnitId),
			}
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	return nil
}
