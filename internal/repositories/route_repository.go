package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
)

type RouteRepository struct {
	DB *sql.DB
}

const routeColumns = `id, origin, destination, departure_label, price_cents, total_seats, occupied_seats, created_at, updated_at`

func scanRoute(row interface{ Scan(...any) error }) (models.Route, error) {
	var r models.Route
	var occupied []byte
	if err := row.Scan(
		&r.ID,
		&r.Origin,
		&r.Destination,
		&r.DepartureLabel,
		&r.PriceCents,
		&r.TotalSeats,
		&occupied,
		&r.CreatedAt,
		&r.UpdatedAt,
	); err != nil {
		return models.Route{}, err
	}
	if len(occupied) > 0 {
		if err := json.Unmarshal(occupied, &r.OccupiedSeats); err != nil {
			return models.Route{}, err
		}
	}
	r.NormalizeOccupied()
	return r, nil
}

func (r RouteRepository) All(ctx context.Context) ([]models.Route, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+routeColumns+` FROM routes ORDER BY origin, destination, departure_label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoutes(rows)
}

func (r RouteRepository) Search(ctx context.Context, origin, destination string) ([]models.Route, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+routeColumns+`
		FROM routes
		WHERE LOWER(origin) = LOWER(?) AND LOWER(destination) = LOWER(?)
		ORDER BY departure_label`,
		strings.TrimSpace(origin), strings.TrimSpace(destination))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRoutes(rows)
}

func collectRoutes(rows *sql.Rows) ([]models.Route, error) {
	out := []models.Route{}
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return out, err
		}
		out = append(out, route)
	}
	return out, rows.Err()
}

func (r RouteRepository) ByID(ctx context.Context, id string) (models.Route, error) {
	route, err := scanRoute(r.DB.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Route{}, domain.NotFoundError{Resource: "ruta", Err: err}
		}
		return models.Route{}, err
	}
	return route, nil
}

func (r RouteRepository) Create(ctx context.Context, route models.Route) error {
	route.NormalizeOccupied()
	occupied, err := json.Marshal(route.OccupiedSeats)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO routes (id, origin, destination, departure_label, price_cents, total_seats, occupied_seats)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		route.ID, route.Origin, route.Destination, route.DepartureLabel, route.PriceCents, route.TotalSeats, occupied)
	return err
}

func (r RouteRepository) Update(ctx context.Context, route models.Route) error {
	route.NormalizeOccupied()
	occupied, err := json.Marshal(route.OccupiedSeats)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE routes
		SET origin=?, destination=?, departure_label=?, price_cents=?, total_seats=?, occupied_seats=?
		WHERE id=?`,
		route.Origin, route.Destination, route.DepartureLabel, route.PriceCents, route.TotalSeats, occupied, route.ID)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "ruta")
}

func (r RouteRepository) UpdateOccupiedSeats(ctx context.Context, id string, seats []int) error {
	sort.Ints(seats)
	occupied, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE routes SET occupied_seats=? WHERE id=?`, occupied, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "ruta")
}

// ClaimSeat locks the route row, re-reads the occupied list and appends the
// seat only when absent. Two concurrent claims for the same seat serialize
// on the row lock; the loser gets a ConflictError.
func (r RouteRepository) ClaimSeat(ctx context.Context, id string, seat int) error {
	return r.mutateSeats(ctx, id, func(route *models.Route) error {
		if !route.SeatValid(seat) {
			return domain.ValidationError{Field: "seat_number", Msg: "asiento fuera de rango"}
		}
		if route.SeatOccupied(seat) {
			return domain.ConflictError{Resource: "asiento", Msg: "el asiento ya está ocupado"}
		}
		route.OccupiedSeats = append(route.OccupiedSeats, seat)
		return nil
	})
}

func (r RouteRepository) ReleaseSeat(ctx context.Context, id string, seat int) error {
	return r.mutateSeats(ctx, id, func(route *models.Route) error {
		kept := route.OccupiedSeats[:0]
		for _, s := range route.OccupiedSeats {
			if s != seat {
				kept = append(kept, s)
			}
		}
		route.OccupiedSeats = kept
		return nil
	})
}

func (r RouteRepository) mutateSeats(ctx context.Context, id string, mutate func(*models.Route) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	route, err := scanRoute(tx.QueryRowContext(ctx, `SELECT `+routeColumns+` FROM routes WHERE id = ? FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFoundError{Resource: "ruta", Err: err}
		}
		return err
	}

	if err := mutate(&route); err != nil {
		return err
	}

	route.NormalizeOccupied()
	occupied, err := json.Marshal(route.OccupiedSeats)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE routes SET occupied_seats=? WHERE id=?`, occupied, id); err != nil {
		return err
	}
	return tx.Commit()
}

func requireRowAffected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return nil
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
