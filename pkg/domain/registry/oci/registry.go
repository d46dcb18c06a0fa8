package oci

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"

	"github.com/KHUSHWANTsRathore11/driftgate/pkg/domain"
	kreg "github.com/KHUSHWANTsRathore11/driftgate/pkg/domain/registry"
)

// Registry backed by an OCI registry.
//
// Trained models are pushed as OCI artifacts at
// {base}/{unit}:{artifact}_{environment} by the training side. Promotion and
// restore only move stage tags ("registry", "production") between digests;
// nothing is ever re-uploaded from here.
type ociRegistry struct {
	base     string
	keychain authn.Keychain
}

type Option func(*ociRegistry) *ociRegistry

func WithKeychain(k authn.Keychain) Option {
	return func(r *ociRegistry) *ociRegistry {
		r.keychain = k
		return r
	}
}

// New returns a Registry rooted at base, e.g. "registry.example.com/fleet".
func New(base string, options ...Option) kreg.Registry {
	r := &ociRegistry{base: base, keychain: authn.DefaultKeychain}
	for _, option := range options {
		r = option(r)
	}
	return r
}

func versionTag(ref kreg.Ref) string {
	return ref.ArtifactVersion + "_" + ref.EnvironmentVersion
}

func parseVersionTag(tag string) (artifact, environment string, ok bool) {
	return strings.Cut(tag, "_")
}

func stageTag(stage kreg.Stage) string {
	return string(stage)
}

func (r *ociRegistry) tag(unitId, tag string) (name.Tag, error) {
	return name.NewTag(fmt.Sprintf("%s/%s:%s", r.base, unitId, tag))
}

func (r *ociRegistry) Promote(ctx context.Context, ref kreg.Ref, stage kreg.Stage) error {
	wrap := func(err error) error {
		return domain.RegistryError{
			Operation: fmt.Sprintf("promote %s/%s to %s", ref.UnitId, versionTag(ref), stage),
			Cause:     err,
		}
	}

	src, err := r.tag(ref.UnitId, versionTag(ref))
	if err != nil {
		return wrap(err)
	}
	dst, err := r.tag(ref.UnitId, stageTag(stage))
	if err != nil {
		return wrap(err)
	}

	opts := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(r.keychain),
	}

	desc, err := remote.Get(src, opts...)
	if err != nil {
		return wrap(err)
	}

	if cur, err := remote.Get(dst, opts...); err == nil && cur.Digest == desc.Digest {
		return kreg.ErrAlreadyPromoted
	}

	if err := remote.Tag(dst, desc, opts...); err != nil {
		return wrap(err)
	}
	return nil
}

func (r *ociRegistry) GetCurrent(ctx context.Context, unitId string) (kreg.Ref, error) {
	wrap := func(err error) error {
		return domain.RegistryError{
			Operation: fmt.Sprintf("get current of %s", unitId),
			Cause:     err,
		}
	}

	prod, err := r.tag(unitId, stageTag(kreg.StageProduction))
	if err != nil {
		return kreg.Ref{}, wrap(err)
	}

	opts := []remote.Option{
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(r.keychain),
	}

	desc, err := remote.Get(prod, opts...)
	if err != nil {
		return kreg.Ref{}, fmt.Errorf("%w: no production model for unit %s", domain.ErrMissing, unitId)
	}

	// the production tag moves; recover versions from the immutable
	// version tag sharing its digest.
	tags, err := remote.List(prod.Repository, opts...)
	if err != nil {
		return kreg.Ref{}, wrap(err)
	}
	for _, t := range tags {
		artifact, environment, ok := parseVersionTag(t)
		if !ok {
			continue
		}
		vt, err := r.tag(unitId, t)
		if err != nil {
			continue
		}
		vdesc, err := remote.Get(vt, opts...)
		if err != nil {
			continue
		}
		if vdesc.Digest == desc.Digest {
			return kreg.Ref{
				UnitId:             unitId,
				ArtifactVersion:    artifact,
				EnvironmentVersion: environment,
			}, nil
		}
	}

	return kreg.Ref{}, wrap(fmt.Errorf("production digest %s has no version tag", desc.Digest))
}

func (r *ociRegistry) Restore(ctx context.Context, unitId string, artifactVersion, environmentVersion string) error {
	ref := kreg.Ref{
		UnitId:             unitId,
		ArtifactVersion:    artifactVersion,
		EnvironmentVersion: environmentVersion,
	}
	if err := r.Promote(ctx, ref, kreg.StageProduction); err != nil {
		if errors.Is(err, kreg.ErrAlreadyPromoted) {
			return nil
		}
		return err
	}
	return nil
}
