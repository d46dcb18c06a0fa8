package postgres

import (
	"context"
	"time"

	kpool "github.com/KHUSHWANTsRathore11/driftgate/pkg/conn/db/postgres/pool"
	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	kdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db"
)

type pgSample struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.SampleInterface {
	return &pgSample{pool: pool}
}

func (m *pgSample) Read(
	ctx context.Context, unitId string, feature string, start, end time.Time,
) (domain.FeatureSample, error) {
	rows, err := m.pool.Query(
		ctx,
		`
		select "value" from "feature_observation"
		where "unit_id" = $1 and "feature" = $2
			and $3 <= "observed_at" and "observed_at" < $4
		order by "observed_at"
		`,
		unitId, feature, start, end,
	)
	if err != nil {
		return domain.FeatureSample{}, err
	}
	defer rows.Close()

	values := []float64{}
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return domain.FeatureSample{}, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return domain.FeatureSample{}, err
	}

	return domain.FeatureSample{
		UnitId: unitId, Feature: feature,
		Start: start, End: end,
		Values: values,
	}, nil
}

func (m *pgSample) Units(ctx context.Context) ([]string, error) {
	rows, err := m.pool.Query(
		ctx,
		`select distinct "unit_id" from "feature_observation" order by "unit_id"`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []string{}
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return units, nil
}
