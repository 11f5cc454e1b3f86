package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Astemirdum/court-booking/pkg/events"
	"github.com/Astemirdum/court-booking/stats/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Repository interface {
	// Save stores event once; a repeated event id reports false.
	Save(ctx context.Context, event events.ReservationEvent) (bool, error)
	GetStats(ctx context.Context) (model.StatsInfo, error)
}

type repository struct {
	db  *pgxpool.Pool
	log *zap.Logger
}

func NewRepository(db *pgxpool.Pool, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

func (r *repository) Save(ctx context.Context, event events.ReservationEvent) (bool, error) {
	const q = `insert into reservation_event (event_id, type, reservation_id, facility_id, user_id, status, actor_id, occurred_at)
	values (@event_id, @type, @reservation_id, @facility_id, @user_id, @status, @actor_id, @occurred_at)
	on conflict (event_id) do nothing`
	args := pgx.NamedArgs{
		"event_id":       event.ID,
		"type":           string(event.Type),
		"reservation_id": event.ReservationID,
		"facility_id":    event.FacilityID,
		"user_id":        event.UserID,
		"status":         event.Status,
		"actor_id":       event.ActorID,
		"occurred_at":    event.Timestamp,
	}
	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repository) GetStats(ctx context.Context) (model.StatsInfo, error) {
	const q = `
	select facility_id,
	       count(*) filter (where type = 'reservation.created')   as created,
	       count(*) filter (where type = 'reservation.confirmed') as confirmed,
	       count(*) filter (where type = 'reservation.rejected')  as rejected,
	       count(*) filter (where type = 'reservation.cancelled') as cancelled,
	       max(occurred_at)                                       as last_updated
	from reservation_event
	group by facility_id
	order by facility_id
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return model.StatsInfo{}, err
	}
	defer rows.Close()
	stats, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.FacilityStats])
	if err != nil {
		return model.StatsInfo{}, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	return model.StatsInfo{Data: stats}, nil
}

type memory struct {
	mu     sync.Mutex
	seen   map[string]struct{}
	totals map[string]*model.FacilityStats
}

func NewInMemory() *memory {
	return &memory{
		seen:   make(map[string]struct{}),
		totals: make(map[string]*model.FacilityStats),
	}
}

func (m *memory) Save(_ context.Context, event events.ReservationEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[event.ID]; ok {
		return false, nil
	}
	m.seen[event.ID] = struct{}{}

	st, ok := m.totals[event.FacilityID]
	if !ok {
		st = &model.FacilityStats{FacilityID: event.FacilityID}
		m.totals[event.FacilityID] = st
	}
	switch event.Type {
	case events.ReservationCreated:
		st.Created++
	case events.ReservationConfirmed:
		st.Confirmed++
	case events.ReservationRejected:
		st.Rejected++
	case events.ReservationCancelled:
		st.Cancelled++
	}
	if event.Timestamp.After(st.LastUpdated) {
		st.LastUpdated = event.Timestamp
	}
	return true, nil
}

func (m *memory) GetStats(context.Context) (model.StatsInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make([]model.FacilityStats, 0, len(m.totals))
	for _, st := range m.totals {
		data = append(data, *st)
	}
	sort.Slice(data, func(i, j int) bool { return data[i].FacilityID < data[j].FacilityID })
	return model.StatsInfo{Data: data}, nil
}
