package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"

	kpool "github.com/KHUSHWANTsRathore11/driftgate/pkg/conn/db/postgres/pool"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	kerr "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/errors/dberrors/postgres"
	kdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/release/db"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/utils/slices"
)

type pgRelease struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.ReleaseInterface {
	return &pgRelease{pool: pool}
}

func (m *pgRelease) New(ctx context.Context, body domain.ReleaseBody) (string, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var attemptId string
	if err := tx.QueryRow(
		ctx,
		`
		insert into "release" (
			"unit_id", "artifact_version", "environment_version",
			"state", "batch_id", "updated_at"
		)
		values ($1, $2, $3, $4, $5, now())
		returning "attempt_id"
		`,
		body.UnitId, body.ArtifactVersion, body.EnvironmentVersion,
		string(domain.Trained), body.BatchId,
	).Scan(&attemptId); err != nil {
		return "", err
	}

	if _, err := tx.Exec(
		ctx,
		`
		insert into "release_history" (
			"attempt_id", "state", "timestamp", "actor", "evidence_ref", "reason"
		)
		values ($1, $2, now(), 'system', '', 'training cycle completed')
		`,
		attemptId, string(domain.Trained),
	); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return attemptId, nil
}

func (m *pgRelease) Get(ctx context.Context, attemptIds []string) (map[string]domain.Release, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rel, err := m.get(ctx, tx, attemptIds)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rel, nil
}

func (m *pgRelease) get(ctx context.Context, conn kpool.Queryer, attemptIds []string) (map[string]domain.Release, error) {
	rel := map[string]domain.Release{}
	{
		rows, err := conn.Query(
			ctx,
			`
			select
				"attempt_id", "unit_id", "artifact_version", "environment_version",
				"state", "batch_id", "updated_at"
			from "release"
			where "attempt_id" = any($1)
			`,
			attemptIds,
		)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		for rows.Next() {
			var body domain.ReleaseBody
			var state string
			if err := rows.Scan(
				&body.AttemptId, &body.UnitId,
				&body.ArtifactVersion, &body.EnvironmentVersion,
				&state, &body.BatchId, &body.UpdatedAt,
			); err != nil {
				return nil, err
			}
			if body.State, err = domain.AsReleaseState(state); err != nil {
				return nil, err
			}
			rel[body.AttemptId] = domain.Release{ReleaseBody: body}
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	if len(rel) == 0 {
		return rel, nil
	}

	rows, err := conn.Query(
		ctx,
		`
		select "attempt_id", "state", "timestamp", "actor", "evidence_ref", "reason"
		from "release_history"
		where "attempt_id" = any($1)
		order by "attempt_id", "id"
		`,
		slices.KeysOf(rel),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var attemptId, state string
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&attemptId, &state, &entry.Timestamp,
			&entry.Actor, &entry.EvidenceRef, &entry.Reason,
		); err != nil {
			return nil, err
		}
		if entry.State, err = domain.AsReleaseState(state); err != nil {
			return nil, err
		}
		r := rel[attemptId]
		r.History = append(r.History, entry)
		rel[attemptId] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rel, nil
}

func (m *pgRelease) Find(ctx context.Context, query domain.ReleaseFindQuery) ([]string, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(
		ctx,
		`
		select "attempt_id" from "release"
		where
			($1::varchar[] is null or "unit_id" = any($1))
			and ($2::varchar[] is null or "state" = any($2))
			and ($3 = '' or "batch_id" = $3)
		order by "unit_id", "attempt_id"
		`,
		nullable(query.UnitId),
		nullable(slices.Map(query.State, domain.ReleaseState.String)),
		query.BatchId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attemptIds := []string{}
	for rows.Next() {
		var attemptId string
		if err := rows.Scan(&attemptId); err != nil {
			return nil, err
		}
		attemptIds = append(attemptIds, attemptId)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return attemptIds, nil
}

func nullable(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func (m *pgRelease) Transit(
	ctx context.Context, attemptId string,
	to domain.ReleaseState, entry domain.HistoryEntry,
) (domain.Release, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return domain.Release{}, err
	}
	defer tx.Rollback(ctx)

	var current domain.ReleaseState
	{
		var state string
		if err := tx.QueryRow(
			ctx,
			`
			select "state" from "release"
			where "attempt_id" = $1 for update
			`,
			attemptId,
		).Scan(&state); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.Release{}, kerr.Missing{
					Table:    "release",
					Identity: fmt.Sprintf("attempt_id = %s", attemptId),
				}
			}
			return domain.Release{}, err
		}
		if current, err = domain.AsReleaseState(state); err != nil {
			return domain.Release{}, err
		}
	}

	if !current.CanTransit(to) {
		return domain.Release{}, domain.NewErrInvalidReleaseStateChanging(current, to)
	}

	if _, err := tx.Exec(
		ctx,
		`
		update "release" set "state" = $1, "updated_at" = now()
		where "attempt_id" = $2
		`,
		string(to), attemptId,
	); err != nil {
		return domain.Release{}, err
	}

	if _, err := tx.Exec(
		ctx,
		`
		insert into "release_history" (
			"attempt_id", "state", "timestamp", "actor", "evidence_ref", "reason"
		)
		values ($1, $2, now(), $3, $4, $5)
		`,
		attemptId, string(to), entry.Actor, entry.EvidenceRef, entry.Reason,
	); err != nil {
		return domain.Release{}, err
	}

	rel, err := m.get(ctx, tx, []string{attemptId})
	if err != nil {
		return domain.Release{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Release{}, err
	}
	return rel[attemptId], nil
}
