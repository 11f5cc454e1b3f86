package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Astemirdum/court-booking/reservation/internal/errs"
	"github.com/Astemirdum/court-booking/reservation/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

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

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var (
	facilityColumns    = []string{"id", "name", "price_per_hour", "active", "created_at", "updated_at"}
	reservationColumns = []string{
		"id", "facility_id", "user_id", "date", "start_time", "end_time",
		"status", "rejection_reason", "total_price", "version", "created_at", "updated_at",
	}
)

type reservationRow struct {
	ID              string      `db:"id"`
	FacilityID      string      `db:"facility_id"`
	UserID          string      `db:"user_id"`
	Date            pgtype.Date `db:"date"`
	StartTime       pgtype.Time `db:"start_time"`
	EndTime         pgtype.Time `db:"end_time"`
	Status          string      `db:"status"`
	RejectionReason *string     `db:"rejection_reason"`
	TotalPrice      int64       `db:"total_price"`
	Version         int         `db:"version"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (row reservationRow) toModel() (model.Reservation, error) {
	status, err := model.ParseStatus(row.Status)
	if err != nil {
		return model.Reservation{}, errors.Wrapf(err, "reservation %s", row.ID)
	}
	return model.Reservation{
		ID:              row.ID,
		FacilityID:      row.FacilityID,
		UserID:          row.UserID,
		Date:            model.DateOf(row.Date.Time),
		StartTime:       fromPgTime(row.StartTime),
		EndTime:         fromPgTime(row.EndTime),
		Status:          status,
		RejectionReason: row.RejectionReason,
		TotalPrice:      row.TotalPrice,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func toPgDate(d model.Date) pgtype.Date {
	return pgtype.Date{Time: d.Time, Valid: true}
}

func toPgTime(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Duration().Microseconds(), Valid: true}
}

func fromPgTime(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDay(time.Duration(t.Microseconds) * time.Microsecond / time.Minute)
}

func collectReservations(rows pgx.Rows) ([]model.Reservation, error) {
	raw, err := pgx.CollectRows(rows, pgx.RowToStructByName[reservationRow])
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}
	items := make([]model.Reservation, 0, len(raw))
	for _, row := range raw {
		res, err := row.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, res)
	}
	return items, nil
}

func collectReservation(rows pgx.Rows) (model.Reservation, error) {
	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[reservationRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	return row.toModel()
}

func (r *repository) GetFacility(ctx context.Context, id string) (model.Facility, error) {
	query, args, err := qb.Select(facilityColumns...).
		From(facilityTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Facility{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Facility{}, err
	}
	f, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Facility])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Facility{}, errs.ErrNotFound
		}
		return model.Facility{}, err
	}
	return f, nil
}

func (r *repository) ListFacilities(ctx context.Context, showAll bool, page, size int) (model.ListFacilities, error) {
	where := sq.And{}
	if !showAll {
		where = append(where, sq.Eq{"active": true})
	}

	countQuery, countArgs, err := qb.Select("count(*)").From(facilityTableName).Where(where).ToSql()
	if err != nil {
		return model.ListFacilities{}, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.ListFacilities{}, err
	}

	q := qb.Select(facilityColumns...).
		From(facilityTableName).
		Where(where).
		OrderBy("name", "id")
	if limit, skip, ok := offset(page, size); ok {
		q = q.Limit(limit).Offset(skip)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return model.ListFacilities{}, err
	}
	r.log.Debug("ListFacilities", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListFacilities{}, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Facility])
	if err != nil {
		return model.ListFacilities{}, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	return model.ListFacilities{
		Paging: model.Paging{
			Page:          page,
			PageSize:      size,
			TotalElements: total,
		},
		Items: items,
	}, nil
}

func (r *repository) CreateFacility(ctx context.Context, req model.CreateFacilityRequest) (model.Facility, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	now := time.Now().UTC()
	query, args, err := qb.Insert(facilityTableName).
		Columns("id", "name", "price_per_hour", "active", "created_at", "updated_at").
		Values(uuid.NewString(), req.Name, req.PricePerHour, active, now, now).
		Suffix("returning " + joinColumns(facilityColumns)).
		ToSql()
	if err != nil {
		return model.Facility{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Facility{}, err
	}
	f, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Facility])
	if err != nil {
		r.log.Error("CreateFacility", zap.String("q", query), zap.Error(err))
		return model.Facility{}, err
	}
	return f, nil
}

func (r *repository) UpdateFacility(ctx context.Context, id string, patch model.FacilityPatch) (model.Facility, error) {
	q := qb.Update(facilityTableName).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Suffix("returning " + joinColumns(facilityColumns))
	if patch.Name != nil {
		q = q.Set("name", *patch.Name)
	}
	if patch.PricePerHour != nil {
		q = q.Set("price_per_hour", *patch.PricePerHour)
	}
	if patch.Active != nil {
		q = q.Set("active", *patch.Active)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.Facility{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Facility{}, err
	}
	f, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Facility])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Facility{}, errs.ErrNotFound
		}
		return model.Facility{}, err
	}
	return f, nil
}

func (r *repository) FindOverlapping(ctx context.Context, facilityID string, date model.Date, start, end model.TimeOfDay, statuses []model.Status) ([]model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"facility_id": facilityID}).
		Where(sq.Eq{"date": toPgDate(date)}).
		Where(sq.Eq{"status": statusStrings(statuses)}).
		Where(sq.Lt{"start_time": toPgTime(end)}).
		Where(sq.Gt{"end_time": toPgTime(start)}).
		OrderBy("start_time").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *repository) Insert(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	if !res.Status.Valid() {
		return model.Reservation{}, errors.Wrapf(errs.ErrUnknownStatus, "%q", res.Status)
	}
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	query, args, err := qb.Insert(reservationTableName).
		Columns(reservationColumns...).
		Values(
			res.ID, res.FacilityID, res.UserID, toPgDate(res.Date), toPgTime(res.StartTime), toPgTime(res.EndTime),
			string(res.Status), res.RejectionReason, res.TotalPrice, res.Version, res.CreatedAt, res.UpdatedAt,
		).
		Suffix("returning " + joinColumns(reservationColumns)).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Reservation{}, mapInsertErr(err)
	}
	stored, err := collectReservation(rows)
	if err != nil {
		r.log.Error("Insert", zap.String("q", query), zap.Error(err))
		return model.Reservation{}, mapInsertErr(err)
	}
	return stored, nil
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgerrcode.ExclusionViolation:
		return errs.ErrSlotConflict
	case pgerrcode.ForeignKeyViolation:
		return errs.ErrFacilityUnavailable
	}
	return err
}

func (r *repository) Get(ctx context.Context, id string) (model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.Reservation{}, err
	}
	return collectReservation(rows)
}

func (r *repository) Update(ctx context.Context, id string, patch model.ReservationPatch) (model.Reservation, error) {
	q := fmt.Sprintf(`update %s
	set status = @status, rejection_reason = @rejection_reason, updated_at = @updated_at, version = version + 1
	where id = @id and version = @version
	returning %s`, reservationTableName, joinColumns(reservationColumns))
	args := pgx.NamedArgs{
		"id":               id,
		"status":           string(patch.Status),
		"rejection_reason": patch.RejectionReason,
		"updated_at":       patch.UpdatedAt,
		"version":          patch.ExpectedVersion,
	}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return model.Reservation{}, err
	}
	res, err := collectReservation(rows)
	if !errors.Is(err, errs.ErrNotFound) {
		return res, err
	}

	var exists bool
	const existsQ = `select exists(select 1 from reservation where id = $1)`
	if err := r.db.QueryRow(ctx, existsQ, id).Scan(&exists); err != nil {
		return model.Reservation{}, err
	}
	if !exists {
		return model.Reservation{}, errs.ErrNotFound
	}
	return model.Reservation{}, errs.ErrConflict
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	query, args, err := qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("date", "start_time", "created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectReservations(rows)
}

func (r *repository) List(ctx context.Context, filter model.ReservationFilter) (model.ListReservations, error) {
	where := sq.And{}
	if filter.FacilityID != "" {
		where = append(where, sq.Eq{"facility_id": filter.FacilityID})
	}
	if filter.UserID != "" {
		where = append(where, sq.Eq{"user_id": filter.UserID})
	}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": string(filter.Status)})
	}
	if filter.Date != nil {
		where = append(where, sq.Eq{"date": toPgDate(*filter.Date)})
	}

	countQuery, countArgs, err := qb.Select("count(*)").From(reservationTableName).Where(where).ToSql()
	if err != nil {
		return model.ListReservations{}, err
	}
	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return model.ListReservations{}, err
	}

	q := qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(where).
		OrderBy("date", "start_time", "created_at")
	if limit, skip, ok := offset(filter.Page, filter.Size); ok {
		q = q.Limit(limit).Offset(skip)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.ListReservations{}, err
	}
	r.log.Debug("List", zap.String("query", query), zap.Any("args", args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return model.ListReservations{}, err
	}
	items, err := collectReservations(rows)
	if err != nil {
		return model.ListReservations{}, err
	}
	return model.ListReservations{
		Paging: model.Paging{
			Page:          filter.Page,
			PageSize:      filter.Size,
			TotalElements: total,
		},
		Items: items,
	}, nil
}

func statusStrings(statuses []model.Status) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
