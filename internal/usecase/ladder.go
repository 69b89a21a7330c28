package usecase

import (
	"github.com/GrandZah/Learning-Matan/internal/entity"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/config"
)

// NewLadder builds the confidence ladder from configuration.
func NewLadder(cfg *config.Config) (entity.Ladder, error) {
	offsets, err := cfg.LadderOffsets()
	if err != nil {
		return nil, err
	}
	return entity.NewLadder(offsets)
}
