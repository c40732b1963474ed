package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/rescuenet/dispatch/internal/domain/entities"
	"github.com/rescuenet/dispatch/internal/domain/repositories"
	"github.com/rescuenet/dispatch/internal/infrastructure/clients/postgres"
	apperrors "github.com/rescuenet/dispatch/pkg/errors"
)

var callColumns = []interface{}{
	"id", "status", "details", "priority",
	"pending_at", "started_at", "ended_at", "created_at", "updated_by",
}

// lockCallQuery takes a row lock on the call so that sibling counting and the
// terminal transition serialize across concurrent completions.
const lockCallQuery = `
	SELECT id, status, details, priority, pending_at, started_at, ended_at, created_at, updated_by
	FROM calls
	WHERE id = $1
	FOR UPDATE
`

// CallAdapter implements the CallRepository interface
type CallAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCallAdapter creates a new call adapter
func NewCallAdapter(client *postgres.Client) repositories.CallRepository {
	return &CallAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func callRecord(c *entities.Call) goqu.Record {
	return goqu.Record{
		"id":         c.ID,
		"status":     c.Status,
		"details":    c.Details,
		"priority":   c.Priority,
		"pending_at": c.PendingAt,
		"started_at": c.StartedAt,
		"ended_at":   c.EndedAt,
		"created_at": c.CreatedAt,
		"updated_by": c.UpdatedBy,
	}
}

func assignmentRecord(a *entities.AmbulanceCall) goqu.Record {
	return goqu.Record{
		"id":           a.ID,
		"call_id":      a.CallID,
		"ambulance_id": a.AmbulanceID,
		"status":       a.Status,
		"created_at":   a.CreatedAt,
		"updated_at":   a.UpdatedAt,
	}
}

func historyRecord(a *entities.AmbulanceCall, at time.Time) goqu.Record {
	return goqu.Record{
		"id":                uuid.New().String(),
		"ambulance_call_id": a.ID,
		"call_id":           a.CallID,
		"ambulance_id":      a.AmbulanceID,
		"status":            a.Status,
		"created_at":        at,
	}
}

func scanCall(row interface{ Scan(...interface{}) error }) (*entities.Call, error) {
	call := &entities.Call{}
	var pendingAt, startedAt, endedAt sql.NullTime

	err := row.Scan(
		&call.ID,
		&call.Status,
		&call.Details,
		&call.Priority,
		&pendingAt,
		&startedAt,
		&endedAt,
		&call.CreatedAt,
		&call.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if pendingAt.Valid {
		call.PendingAt = &pendingAt.Time
	}
	if startedAt.Valid {
		call.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		call.EndedAt = &endedAt.Time
	}
	return call, nil
}

func scanAssignment(row interface{ Scan(...interface{}) error }) (*entities.AmbulanceCall, error) {
	assignment := &entities.AmbulanceCall{}
	err := row.Scan(
		&assignment.ID,
		&assignment.CallID,
		&assignment.AmbulanceID,
		&assignment.Status,
		&assignment.CreatedAt,
		&assignment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// Create persists a new call
func (a *CallAdapter) Create(ctx context.Context, call *entities.Call) error {
	query, args, err := a.db.Insert("calls").Rows(callRecord(call)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create call", err)
	}
	return nil
}

// GetByID retrieves a call by ID
func (a *CallAdapter) GetByID(ctx context.Context, id string) (*entities.Call, error) {
	query, args, err := a.db.Select(callColumns...).
		From("calls").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	call, err := scanCall(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("call with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get call", err)
	}
	return call, nil
}

// Update persists the call row
func (a *CallAdapter) Update(ctx context.Context, call *entities.Call) error {
	query, args, err := a.db.Update("calls").
		Set(callRecord(call)).
		Where(goqu.Ex{"id": call.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update call", err)
	}
	return requireRowsAffected(result, fmt.Sprintf("call with id %s not found", call.ID))
}

// ListActive retrieves calls that have not ended
func (a *CallAdapter) ListActive(ctx context.Context) ([]*entities.Call, error) {
	query, args, err := a.db.Select(callColumns...).
		From("calls").
		Where(goqu.C("status").Neq(entities.CallStatusEnded)).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list active calls", err)
	}
	defer rows.Close()

	calls := []*entities.Call{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan call", err)
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating calls", err)
	}
	return calls, nil
}

// CreateAssignment persists a new assignment plus its history row
func (a *CallAdapter) CreateAssignment(ctx context.Context, assignment *entities.AmbulanceCall) error {
	insertQuery, args, err := a.db.Insert("ambulance_calls").Rows(assignmentRecord(assignment)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	historyQuery, historyArgs, err := a.db.Insert("ambulance_call_history").
		Rows(historyRecord(assignment, time.Now())).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build history insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertQuery, args...); err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflictError(fmt.Sprintf(
				"duplicate assignment of ambulance %s to call %s", assignment.AmbulanceID, assignment.CallID))
		}
		return apperrors.NewInternalError("failed to create assignment", err)
	}

	if _, err := tx.ExecContext(ctx, historyQuery, historyArgs...); err != nil {
		return apperrors.NewInternalError("failed to append assignment history", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}

// GetAssignment retrieves the assignment for a (call, ambulance) pair
func (a *CallAdapter) GetAssignment(ctx context.Context, callID, ambulanceID string) (*entities.AmbulanceCall, error) {
	query, args, err := a.db.Select("id", "call_id", "ambulance_id", "status", "created_at", "updated_at").
		From("ambulance_calls").
		Where(goqu.Ex{"call_id": callID, "ambulance_id": ambulanceID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	assignment, err := scanAssignment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf(
			"assignment of ambulance %s to call %s not found", ambulanceID, callID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get assignment", err)
	}
	return assignment, nil
}

// GetAssignmentByID retrieves an assignment by its own id
func (a *CallAdapter) GetAssignmentByID(ctx context.Context, id string) (*entities.AmbulanceCall, error) {
	query, args, err := a.db.Select("id", "call_id", "ambulance_id", "status", "created_at", "updated_at").
		From("ambulance_calls").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	assignment, err := scanAssignment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("assignment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get assignment", err)
	}
	return assignment, nil
}

// UpdateAssignment persists an assignment plus its history row
func (a *CallAdapter) UpdateAssignment(ctx context.Context, assignment *entities.AmbulanceCall) error {
	assignment.UpdatedAt = time.Now()

	updateQuery, args, err := a.db.Update("ambulance_calls").
		Set(goqu.Record{"status": assignment.Status, "updated_at": assignment.UpdatedAt}).
		Where(goqu.Ex{"id": assignment.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	historyQuery, historyArgs, err := a.db.Insert("ambulance_call_history").
		Rows(historyRecord(assignment, assignment.UpdatedAt)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build history insert query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, updateQuery, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update assignment", err)
	}
	if err := requireRowsAffected(result, fmt.Sprintf("assignment with id %s not found", assignment.ID)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, historyQuery, historyArgs...); err != nil {
		return apperrors.NewInternalError("failed to append assignment history", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit transaction", err)
	}
	return nil
}

// CompleteAssignment marks an assignment completed and, when it is the last
// active one, ends the parent call inside the same transaction. The row lock
// on the call serializes racing completions so the call ends exactly once.
func (a *CallAdapter) CompleteAssignment(ctx context.Context, callID, ambulanceID, updatedBy string) (*repositories.CompleteAssignmentResult, error) {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	call, err := scanCall(tx.QueryRowContext(ctx, lockCallQuery, callID))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("call with id %s not found", callID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to lock call", err)
	}

	assignmentQuery, args, err := a.db.Select("id", "call_id", "ambulance_id", "status", "created_at", "updated_at").
		From("ambulance_calls").
		Where(goqu.Ex{"call_id": callID, "ambulance_id": ambulanceID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	assignment, err := scanAssignment(tx.QueryRowContext(ctx, assignmentQuery, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf(
			"assignment of ambulance %s to call %s not found", ambulanceID, callID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get assignment", err)
	}

	now := time.Now()
	assignment.Status = entities.AmbulanceCallStatusCompleted
	assignment.UpdatedAt = now

	updateQuery, updateArgs, err := a.db.Update("ambulance_calls").
		Set(goqu.Record{"status": assignment.Status, "updated_at": assignment.UpdatedAt}).
		Where(goqu.Ex{"id": assignment.ID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build update query", err)
	}
	if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return nil, apperrors.NewInternalError("failed to complete assignment", err)
	}

	// history is unconditional per save, repeated completions included
	historyQuery, historyArgs, err := a.db.Insert("ambulance_call_history").
		Rows(historyRecord(assignment, now)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build history insert query", err)
	}
	if _, err := tx.ExecContext(ctx, historyQuery, historyArgs...); err != nil {
		return nil, apperrors.NewInternalError("failed to append assignment history", err)
	}

	countQuery, countArgs, err := a.db.Select(goqu.COUNT("*")).
		From("ambulance_calls").
		Where(goqu.Ex{"call_id": callID}, goqu.C("status").Neq(entities.AmbulanceCallStatusCompleted)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build count query", err)
	}

	var remaining int
	if err := tx.QueryRowContext(ctx, countQuery, countArgs...).Scan(&remaining); err != nil {
		return nil, apperrors.NewInternalError("failed to count active assignments", err)
	}

	callEnded := false
	if remaining == 0 && call.Status != entities.CallStatusEnded {
		call.Status = entities.CallStatusEnded
		call.EndedAt = &now
		call.UpdatedBy = updatedBy

		endQuery, endArgs, err := a.db.Update("calls").
			Set(goqu.Record{"status": call.Status, "ended_at": call.EndedAt, "updated_by": call.UpdatedBy}).
			Where(goqu.Ex{"id": call.ID}).
			ToSQL()
		if err != nil {
			return nil, apperrors.NewInternalError("failed to build call update query", err)
		}
		if _, err := tx.ExecContext(ctx, endQuery, endArgs...); err != nil {
			return nil, apperrors.NewInternalError("failed to end call", err)
		}
		callEnded = true
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to commit transaction", err)
	}

	return &repositories.CompleteAssignmentResult{
		Assignment: assignment,
		Remaining:  remaining,
		CallEnded:  callEnded,
		Call:       call,
	}, nil
}

// ListActiveAssignments retrieves assignments for a call that are not completed
func (a *CallAdapter) ListActiveAssignments(ctx context.Context, callID string) ([]*entities.AmbulanceCall, error) {
	query, args, err := a.db.Select("id", "call_id", "ambulance_id", "status", "created_at", "updated_at").
		From("ambulance_calls").
		Where(goqu.Ex{"call_id": callID}, goqu.C("status").Neq(entities.AmbulanceCallStatusCompleted)).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list active assignments", err)
	}
	defer rows.Close()

	assignments := []*entities.AmbulanceCall{}
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan assignment", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating assignments", err)
	}
	return assignments, nil
}

// ListAssignmentHistory retrieves the append-only trail for an assignment
func (a *CallAdapter) ListAssignmentHistory(ctx context.Context, ambulanceCallID string) ([]*entities.AmbulanceCallHistory, error) {
	query, args, err := a.db.Select("id", "ambulance_call_id", "call_id", "ambulance_id", "status", "created_at").
		From("ambulance_call_history").
		Where(goqu.Ex{"ambulance_call_id": ambulanceCallID}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list assignment history", err)
	}
	defer rows.Close()

	history := []*entities.AmbulanceCallHistory{}
	for rows.Next() {
		h := &entities.AmbulanceCallHistory{}
		err := rows.Scan(&h.ID, &h.AmbulanceCallID, &h.CallID, &h.AmbulanceID, &h.Status, &h.CreatedAt)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan assignment history", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating assignment history", err)
	}
	return history, nil
}
