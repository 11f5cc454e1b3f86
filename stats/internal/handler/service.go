package handler

import (
	"context"

	"github.com/Astemirdum/court-booking/pkg/auth"
	"github.com/Astemirdum/court-booking/pkg/events"
	statsModel "github.com/Astemirdum/court-booking/stats/internal/model"
	"github.com/Astemirdum/court-booking/stats/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type StatsService interface {
	GetStats(ctx context.Context, caller auth.Caller) (statsModel.StatsInfo, error)
	Record(ctx context.Context, event events.ReservationEvent) error
}

var _ StatsService = (*service.Service)(nil)
