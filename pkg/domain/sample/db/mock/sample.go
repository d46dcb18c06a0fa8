package mock

import (
	"context"
	"errors"
	"time"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	dbmock "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/internal/db/mock"
	kdb "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/sample/db"
)

type SampleInterface struct {
	rec dbmock.Recorder

	Impl struct {
		Read  func(ctx context.Context, unitId string, feature string, start, end time.Time) (domain.FeatureSample, error)
		Units func(ctx context.Context) ([]string, error)
	}

	Calls struct {
		Read dbmock.CallLog[struct {
			UnitId  string
			Feature string
			Start   time.Time
			End     time.Time
		}]
		Units dbmock.CallLog[struct{}]
	}
}

func NewSampleInterface() *SampleInterface {
	return &SampleInterface{}
}

var _ kdb.SampleInterface = &SampleInterface{}

func (m *SampleInterface) Read(
	ctx context.Context, unitId string, feature string, start, end time.Time,
) (domain.FeatureSample, error) {
	dbmock.Record(&m.rec, &m.Calls.Read, struct {
		UnitId  string
		Feature string
		Start   time.Time
		End     time.Time
	}{UnitId: unitId, Feature: feature, Start: start, End: end})
	if m.Impl.Read != nil {
		return m.Impl.Read(ctx, unitId, feature, start, end)
	}

	panic(errors.New("it should not be called"))
}

func (m *SampleInterface) Units(ctx context.Context) ([]string, error) {
	dbmock.Record(&m.rec, &m.Calls.Units, struct{}{})
	if m.Impl.Units != nil {
		return m.Impl.Units(ctx)
	}

	panic(errors.New("it should not be called"))
}
