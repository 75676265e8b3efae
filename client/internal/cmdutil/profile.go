package cmdutil

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"nimbus/client/internal/config"
)

// ResolveProfile picks the profile a command should act on: the --profile
// flag when given, otherwise the one selected with 'nimbus profiles use'.
func ResolveProfile(cfg config.Config, flagValue string) (uuid.UUID, error) {
	if flagValue != "" {
		id, err := uuid.Parse(flagValue)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid profile id: %s", flagValue)
		}
		return id, nil
	}

	if cfg.ProfileID == uuid.Nil {
		return uuid.Nil, errors.New("no profile selected, run 'nimbus profiles use' or pass --profile")
	}
	return cfg.ProfileID, nil
}
