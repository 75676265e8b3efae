package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"nimbus/internal/config"
	"nimbus/internal/eventbus"
	"nimbus/internal/integrations/rclone"
	"nimbus/internal/integrations/s3"
	"nimbus/internal/store"
	"nimbus/internal/types"
	"nimbus/logger"
)

type (
	ProfileService interface {
		Create(ctx context.Context, params types.CreateProfileParams) (*types.Profile, error)
		Update(ctx context.Context, params types.UpdateProfileParams) (*types.Profile, error)
		Delete(ctx context.Context, profileID uuid.UUID) error
		Get(ctx context.Context, profileID uuid.UUID) (*types.Profile, error)
		List(ctx context.Context) ([]*types.Profile, error)
		SetActive(ctx context.Context, profileID uuid.UUID) error
		ConfigureStorage(ctx context.Context, cred types.StorageCredentials, bucket string) error
	}

	profileService struct {
		st           store.Store
		cfg          config.Config
		rcloneClient rclone.Client
		bus          eventbus.Bus
		newVerifier  func(types.StorageCredentials) (s3.Verifier, error)
	}
)

func NewProfileService(st store.Store, cfg config.Config, rc rclone.Client, bus eventbus.Bus) ProfileService {
	return &profileService{
		st:           st,
		cfg:          cfg,
		rcloneClient: rc,
		bus:          bus,
		newVerifier:  s3.NewVerifier,
	}
}

func (p *profileService) Create(ctx context.Context, params types.CreateProfileParams) (*types.Profile, error) {
	profile := types.NewProfile(params.Name)
	profile.Bucket = params.Bucket
	profile.Prefix = params.Prefix
	profile.Sources = params.Sources
	profile.RcloneConf = p.cfg.RcloneConfFile()
	if params.Remote != "" {
		profile.Remote = params.Remote
	}
	if params.Mode != "" {
		profile.Mode = types.BackupMode(params.Mode)
	}

	if candidates := p.rcloneClient.Detect(ctx); len(candidates) > 0 {
		profile.RcloneBin = candidates[0]
	} else {
		profile.RcloneBin = "rclone"
		logger.Warn("no rclone binary found, falling back to PATH lookup",
			zap.String("profile", profile.Name))
	}

	err := p.st.Update(ctx, func(state *types.AppState) error {
		exists := lo.ContainsBy(state.Profiles, func(item *types.Profile) bool {
			return item.Name == profile.Name
		})
		if exists {
			return errors.Errorf("a profile named %q already exists", profile.Name)
		}
		state.Profiles = append(state.Profiles, profile)
		if state.ActiveProfileID == nil {
			state.ActiveProfileID = &profile.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("profile created",
		zap.String("profile_id", profile.ID.String()),
		zap.String("name", profile.Name),
		zap.String("destination", profile.Destination()))
	return profile, nil
}

func (p *profileService) Update(ctx context.Context, params types.UpdateProfileParams) (*types.Profile, error) {
	var updated *types.Profile
	err := p.st.Update(ctx, func(state *types.AppState) error {
		profile := state.FindProfile(params.ProfileID)
		if profile == nil {
			return store.ErrProfileNotFound
		}

		if params.Name != nil {
			profile.Name = *params.Name
		}
		if params.Bucket != nil {
			profile.Bucket = *params.Bucket
		}
		if params.Prefix != nil {
			profile.Prefix = *params.Prefix
		}
		if len(params.Sources) > 0 {
			profile.Sources = params.Sources
		}
		if params.Mode != nil {
			profile.Mode = types.BackupMode(*params.Mode)
		}
		if len(params.Flags) > 0 {
			profile.RcloneFlags = params.Flags
		}
		profile.UpdatedAt = time.Now().UTC()
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (p *profileService) Delete(ctx context.Context, profileID uuid.UUID) error {
	return p.st.Update(ctx, func(state *types.AppState) error {
		if state.FindProfile(profileID) == nil {
			return store.ErrProfileNotFound
		}

		state.Profiles = lo.Filter(state.Profiles, func(item *types.Profile, _ int) bool {
			return item.ID != profileID
		})
		if state.ActiveProfileID != nil && *state.ActiveProfileID == profileID {
			state.ActiveProfileID = nil
			if len(state.Profiles) > 0 {
				state.ActiveProfileID = &state.Profiles[0].ID
			}
		}
		return nil
	})
}

func (p *profileService) Get(ctx context.Context, profileID uuid.UUID) (*types.Profile, error) {
	state, err := p.st.Load(ctx)
	if err != nil {
		return nil, err
	}
	profile := state.FindProfile(profileID)
	if profile == nil {
		return nil, store.ErrProfileNotFound
	}
	return profile, nil
}

func (p *profileService) List(ctx context.Context) ([]*types.Profile, error) {
	state, err := p.st.Load(ctx)
	if err != nil {
		return nil, err
	}
	return state.Profiles, nil
}

func (p *profileService) SetActive(ctx context.Context, profileID uuid.UUID) error {
	return p.st.Update(ctx, func(state *types.AppState) error {
		if state.FindProfile(profileID) == nil {
			return store.ErrProfileNotFound
		}
		state.ActiveProfileID = &profileID
		return nil
	})
}

// ConfigureStorage writes the rclone remote config and confirms the bucket
// is reachable with the supplied credentials before any backup depends on it.
func (p *profileService) ConfigureStorage(ctx context.Context, cred types.StorageCredentials, bucket string) error {
	verifier, err := p.newVerifier(cred)
	if err != nil {
		return errors.Wrap(err, "failed to build storage client")
	}
	if err := verifier.VerifyBucket(ctx, bucket); err != nil {
		return errors.Wrapf(err, "bucket %s is not accessible", bucket)
	}

	if err := rclone.WriteConfig(p.cfg.RcloneConfFile(), "aws", cred); err != nil {
		return err
	}

	logger.Info("storage configured", zap.String("bucket", bucket), zap.String("region", cred.Region))
	return nil
}
