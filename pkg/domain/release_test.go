package domain_test

import (
	"errors"
	"testing"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

func TestReleaseState_CanTransit(t *testing.T) {
	states := []domain.ReleaseState{
		domain.Trained,
		domain.RegistryPendingApproval,
		domain.Registry,
		domain.TestDeployed,
		domain.TestValidated,
		domain.TestFailed,
		domain.ProdPendingApproval,
		domain.Production,
		domain.PendingExpired,
		domain.RolledBack,
	}

	allowed := map[domain.ReleaseState][]domain.ReleaseState{
		domain.Trained:                 {domain.RegistryPendingApproval},
		domain.RegistryPendingApproval: {domain.Registry, domain.PendingExpired},
		domain.Registry:                {domain.TestDeployed, domain.RolledBack},
		domain.TestDeployed:            {domain.TestValidated, domain.TestFailed, domain.RolledBack},
		domain.TestValidated:           {domain.ProdPendingApproval, domain.RolledBack},
		domain.TestFailed:              {domain.RolledBack},
		domain.ProdPendingApproval:     {domain.Production, domain.PendingExpired, domain.RolledBack},
		domain.Production:              {domain.RolledBack},
		domain.PendingExpired:          {},
		domain.RolledBack:              {},
	}

	for _, from := range states {
		for _, to := range states {
			expected := false
			for _, ok := range allowed[from] {
				expected = expected || ok == to
			}
			if got := from.CanTransit(to); got != expected {
				t.Errorf("%s -> %s: got %v, expected %v", from, to, got, expected)
			}
		}
	}
}

func TestReleaseState_predicates(t *testing.T) {
	for _, testcase := range []struct {
		state           domain.ReleaseState
		terminal        bool
		pendingApproval bool
		rollbackable    bool
	}{
		{domain.Trained, false, false, false},
		{domain.RegistryPendingApproval, false, true, false},
		{domain.Registry, false, false, true},
		{domain.TestDeployed, false, false, true},
		{domain.TestValidated, false, false, true},
		{domain.TestFailed, true, false, true},
		{domain.ProdPendingApproval, false, true, true},
		{domain.Production, true, false, true},
		{domain.PendingExpired, true, false, false},
		{domain.RolledBack, true, false, false},
	} {
		if got := testcase.state.Terminal(); got != testcase.terminal {
			t.Errorf("%s.Terminal(): got %v, expected %v", testcase.state, got, testcase.terminal)
		}
		if got := testcase.state.PendingApproval(); got != testcase.pendingApproval {
			t.Errorf("%s.PendingApproval(): got %v, expected %v", testcase.state, got, testcase.pendingApproval)
		}
		if got := testcase.state.Rollbackable(); got != testcase.rollbackable {
			t.Errorf("%s.Rollbackable(): got %v, expected %v", testcase.state, got, testcase.rollbackable)
		}
	}
}

func TestAsReleaseState(t *testing.T) {
	t.Run("it should accept every known state string", func(t *testing.T) {
		for _, state := range []domain.ReleaseState{
			domain.Trained, domain.RegistryPendingApproval, domain.Registry,
			domain.TestDeployed, domain.TestValidated, domain.TestFailed,
			domain.ProdPendingApproval, domain.Production,
			domain.PendingExpired, domain.RolledBack,
		} {
			got, err := domain.AsReleaseState(state.String())
			if err != nil {
				t.Errorf("%s: unexpected error: %s", state, err)
			}
			if got != state {
				t.Errorf("got %s, expected %s", got, state)
			}
		}
	})

	t.Run("it should reject unknown strings", func(t *testing.T) {
		if _, err := domain.AsReleaseState("deploying"); err == nil {
			t.Errorf("expected an error for an unknown state")
		}
	})
}

func TestNewErrInvalidReleaseStateChanging(t *testing.T) {
	err := domain.NewErrInvalidReleaseStateChanging(domain.Trained, domain.Production)
	if !errors.Is(err, domain.ErrInvalidReleaseStateChanging) {
		t.Errorf("expected ErrInvalidReleaseStateChanging, got %v", err)
	}
}

func TestReleaseState_Advance(t *testing.T) {
	type When struct {
		from  domain.ReleaseState
		event domain.ReleaseEvent
	}

	t.Run("a valid event advances the state", func(t *testing.T) {
		for name, testcase := range map[string]struct {
			when When
			then domain.ReleaseState
		}{
			"registry approval granted": {
				When{domain.RegistryPendingApproval, domain.ReleaseEvent{Type: domain.ApprovalGranted}},
				domain.Registry,
			},
			"production approval granted": {
				When{domain.ProdPendingApproval, domain.ReleaseEvent{Type: domain.ApprovalGranted}},
				domain.Production,
			},
			"registry approval denied": {
				When{domain.RegistryPendingApproval, domain.ReleaseEvent{Type: domain.ApprovalDenied}},
				domain.PendingExpired,
			},
			"production approval timed out": {
				When{domain.ProdPendingApproval, domain.ReleaseEvent{Type: domain.ApprovalTimeout}},
				domain.PendingExpired,
			},
			"test passed": {
				When{domain.TestDeployed, domain.ReleaseEvent{Type: domain.TestResultArrived, TestPassed: true}},
				domain.TestValidated,
			},
			"test failed": {
				When{domain.TestDeployed, domain.ReleaseEvent{Type: domain.TestResultArrived}},
				domain.TestFailed,
			},
			"rollback of production": {
				When{domain.Production, domain.ReleaseEvent{Type: domain.RollbackRequested}},
				domain.RolledBack,
			},
			"rollback mid-pipeline": {
				When{domain.TestDeployed, domain.ReleaseEvent{Type: domain.RollbackRequested}},
				domain.RolledBack,
			},
		} {
			t.Run(name, func(t *testing.T) {
				got, err := testcase.when.from.Advance(testcase.when.event)
				if err != nil {
					t.Fatalf("unexpected error: %s", err)
				}
				if got != testcase.then {
					t.Errorf("advanced to %s, expected %s", got, testcase.then)
				}
			})
		}
	})

	t.Run("an event invalid for the state fails without a guess", func(t *testing.T) {
		for name, when := range map[string]When{
			"approval on a trained record":  {domain.Trained, domain.ReleaseEvent{Type: domain.ApprovalGranted}},
			"test result while pending":     {domain.ProdPendingApproval, domain.ReleaseEvent{Type: domain.TestResultArrived}},
			"rollback before the registry":  {domain.Trained, domain.ReleaseEvent{Type: domain.RollbackRequested}},
			"denial after production":       {domain.Production, domain.ReleaseEvent{Type: domain.ApprovalDenied}},
			"timeout on a terminal attempt": {domain.RolledBack, domain.ReleaseEvent{Type: domain.ApprovalTimeout}},
		} {
			t.Run(name, func(t *testing.T) {
				got, err := when.from.Advance(when.event)
				if !errors.Is(err, domain.ErrInvalidReleaseStateChanging) {
					t.Errorf("expected ErrInvalidReleaseStateChanging, got %v", err)
				}
				if got != when.from {
					t.Errorf("state moved to %s on an invalid event", got)
				}
			})
		}
	})
}
