package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/position"
)

type positionAssignmentPolicy struct {
	positions position.Repository
}

// NewAssignmentPolicy returns the policy guarding position assignment:
// the position must exist, be active, and have no open assignment. The
// caller must evaluate it inside the transaction performing the write.
func NewAssignmentPolicy(positions position.Repository) person.AssignmentPolicy {
	return &positionAssignmentPolicy{positions: positions}
}

func (p *positionAssignmentPolicy) CanAssign(ctx context.Context, positionID uuid.UUID) error {
	pos, err := p.positions.GetByID(ctx, positionID)
	if err != nil {
		return err
	}
	if !pos.IsActive {
		return person.NewDomainError("POSITION_INACTIVE", "position is not active")
	}
	occupied, err := p.positions.IsOccupied(ctx, positionID)
	if err != nil {
		return err
	}
	if occupied {
		return person.NewDomainError("POSITION_OCCUPIED", "position is already occupied")
	}
	return nil
}
