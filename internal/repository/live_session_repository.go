package repository

import (
	"context"

	"juneberry/internal/domain/model"
)

type LiveSessionRepository interface {
	ListActive(ctx context.Context) ([]model.LiveSession, error)
}
