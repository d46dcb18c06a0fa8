package domain_test

import (
	"errors"
	"testing"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
)

func TestClassify(t *testing.T) {
	type when struct {
		backwardCompatible bool
		requiresRetrain    bool
		from, to           string
	}
	type then struct {
		class    domain.CompatibilityClass
		conflict bool
	}

	for name, testcase := range map[string]struct {
		when when
		then then
	}{
		"compatible, no retrain: non-breaking": {
			when: when{backwardCompatible: true, requiresRetrain: false, from: "2.0.0", to: "2.1.0"},
			then: then{class: domain.NonBreaking},
		},
		"incompatible: breaking": {
			when: when{backwardCompatible: false, requiresRetrain: false, from: "2.0.0", to: "3.0.0"},
			then: then{class: domain.Breaking},
		},
		"retrain required: breaking even when declared compatible across a minor bump": {
			when: when{backwardCompatible: true, requiresRetrain: true, from: "2.0.0", to: "2.1.0"},
			then: then{class: domain.Breaking},
		},
		"incompatible and retrain: breaking": {
			when: when{backwardCompatible: false, requiresRetrain: true, from: "2.0.0", to: "3.0.0"},
			then: then{class: domain.Breaking},
		},
		"compatible-yet-retraining across a major bump: conflict, no guessing": {
			when: when{backwardCompatible: true, requiresRetrain: true, from: "2.0.0", to: "3.0.0"},
			then: then{conflict: true},
		},
		"compatible-yet-retraining across a v-prefixed major bump: conflict": {
			when: when{backwardCompatible: true, requiresRetrain: true, from: "v2.0.0", to: "v3.0.0"},
			then: then{conflict: true},
		},
		"compatible-yet-retraining with unparsable versions: no bump evidence, breaking": {
			when: when{backwardCompatible: true, requiresRetrain: true, from: "stable", to: "latest"},
			then: then{class: domain.Breaking},
		},
		"compatible-yet-retraining downgrade: no bump, breaking": {
			when: when{backwardCompatible: true, requiresRetrain: true, from: "3.0.0", to: "2.9.0"},
			then: then{class: domain.Breaking},
		},
	} {
		t.Run(name, func(t *testing.T) {
			change := domain.EnvironmentChange{
				FromVersion:        testcase.when.from,
				ToVersion:          testcase.when.to,
				BackwardCompatible: testcase.when.backwardCompatible,
				RequiresRetrain:    testcase.when.requiresRetrain,
			}

			got, err := domain.Classify(change)

			if testcase.then.conflict {
				if !errors.Is(err, domain.ErrClassificationConflict) {
					t.Fatalf("expected ErrClassificationConflict, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			if got.Class != testcase.then.class {
				t.Errorf("class: got %s, expected %s", got.Class, testcase.then.class)
			}

			// pure: classifying again yields the same result.
			again, err := domain.Classify(change)
			if err != nil || !again.Equal(got) {
				t.Errorf("Classify is not pure: %+v vs %+v (err %v)", got, again, err)
			}
		})
	}
}

func TestCompatibilityClass_RequiresFleetRetrain(t *testing.T) {
	if !domain.Breaking.RequiresFleetRetrain() {
		t.Errorf("a breaking change requires a fleet retrain")
	}
	if domain.NonBreaking.RequiresFleetRetrain() {
		t.Errorf("a non-breaking change must not require a fleet retrain")
	}
}
