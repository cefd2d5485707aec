package service

import (
	"context"

	"ForAlpha/internal/domain/models"
)

// Advisor turns an alpha table into a qualitative recommendation. It never
// returns an error: any failure of the underlying model call is replaced by
// the conservative fallback advice, which is part of the boundary contract.
type Advisor interface {
	Advise(ctx context.Context, symbol string, table []models.AlphaRecord) models.Advice
}
