package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
	"github.com/MKhiriev/go-trip-keeper/models"
)

type expenseRepository struct {
	*DB
	q Querier
}

func NewExpenseRepository(db *DB) ExpenseRepository {
	return &expenseRepository{DB: db, q: db.DB}
}

func (r *expenseRepository) GetExpense(ctx context.Context, id string) (models.Expense, error) {
	log := logger.FromContext(ctx)

	query, args, err := selectWithOwner(r.builder, expensesTable, expenseColumns).
		Where(sq.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "expenseRepository.GetExpense").Msg("failed to build query")
		return models.Expense{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var expense models.Expense
	err = scanExpense(r.q.QueryRowContext(ctx, query, args...), &expense, &expense.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Expense{}, ErrEntityNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "expenseRepository.GetExpense").Str("expense_id", id).Msg("failed to get expense")
		return models.Expense{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return expense, nil
}

func (r *expenseRepository) CreateExpense(ctx context.Context, expense models.Expense) (models.Expense, error) {
	log := logger.FromContext(ctx)

	now := r.now()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	expense.CreatedAt = expense.CreatedAt.UTC()
	expense.UpdatedAt = now

	query, args, err := r.builder.
		Insert(expensesTable).
		Columns(expenseColumns...).
		Values(
			expense.ID, expense.TripID, expense.DestinationID, expense.Amount, expense.Currency,
			expense.Category, expense.PaymentMethod, expense.Description, expense.ExpenseDate,
			expense.ExpenseTime, expense.CreatedAt, expense.UpdatedAt,
		).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "expenseRepository.CreateExpense").Msg("failed to build query")
		return models.Expense{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.q.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "expenseRepository.CreateExpense").
			Str("expense_id", expense.ID).
			Str("trip_id", expense.TripID).
			Msg("failed to insert expense")
		return models.Expense{}, r.wrapWriteError(err)
	}

	return expense, nil
}

// UpdateExpense applies patch to an expense on one of userID's trips. The
// destination link is always written: an absent destinationId clears it.
func (r *expenseRepository) UpdateExpense(ctx context.Context, userID int64, id string, patch models.ExpensePatch, notAfter time.Time) (models.Expense, error) {
	log := logger.FromContext(ctx)

	update := r.builder.Update(expensesTable)
	if patch.TripID.Valid {
		update = update.Set("trip_id", patch.TripID.Value)
	}
	update = update.Set("destination_id", patch.DestinationID.Ptr())
	if patch.Amount.Valid {
		update = update.Set("amount", patch.Amount.Value)
	}
	if patch.Currency.Valid {
		update = update.Set("currency", patch.Currency.Value)
	}
	if patch.Category.Valid {
		update = update.Set("category", patch.Category.Value)
	}
	if patch.PaymentMethod.Valid {
		update = update.Set("payment_method", patch.PaymentMethod.Value)
	}
	if patch.Description.Set {
		update = update.Set("description", patch.Description.Ptr())
	}
	if patch.ExpenseDate.Valid {
		update = update.Set("expense_date", patch.ExpenseDate.Value)
	}
	if patch.ExpenseTime.Set {
		update = update.Set("expense_time", patch.ExpenseTime.Ptr())
	}

	query, args, err := update.
		Set("updated_at", bumpUpdatedAt(r.now())).
		Where(sq.Eq{"id": id}).
		Where(ownedByUser(userID)).
		Where(sq.LtOrEq{"updated_at": notAfter.UTC()}).
		Suffix(returning(expenseColumns)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "expenseRepository.UpdateExpense").Msg("failed to build query")
		return models.Expense{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var expense models.Expense
	err = scanExpense(r.q.QueryRowContext(ctx, query, args...), &expense)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Expense{}, ErrStaleWrite
	}
	if err != nil {
		log.Err(err).
			Str("func", "expenseRepository.UpdateExpense").
			Str("expense_id", id).
			Int64("user_id", userID).
			Msg("failed to update expense")
		return models.Expense{}, r.wrapWriteError(err)
	}
	expense.OwnerID = userID

	return expense, nil
}

func (r *expenseRepository) DeleteExpense(ctx context.Context, userID int64, id string) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.builder.
		Delete(expensesTable).
		Where(sq.Eq{"id": id}).
		Where(ownedByUser(userID)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "expenseRepository.DeleteExpense").Msg("failed to build query")
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return execDelete(ctx, r.q, query, args, "expenseRepository.DeleteExpense")
}

func (r *expenseRepository) ListExpenses(ctx context.Context, userID int64, since *time.Time) ([]models.Expense, error) {
	log := logger.FromContext(ctx)

	selectQuery := selectWithOwner(r.builder, expensesTable, expenseColumns).
		Where(sq.Eq{"t.user_id": userID})
	if since != nil {
		selectQuery = selectQuery.Where(sq.Gt{"c.updated_at": since.UTC()})
	}

	query, args, err := selectQuery.OrderBy("c.updated_at", "c.id").ToSql()
	if err != nil {
		log.Err(err).Str("func", "expenseRepository.ListExpenses").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "expenseRepository.ListExpenses").Int64("user_id", userID).Msg("failed to list expenses")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var expense models.Expense
		if scanErr := scanExpense(rows, &expense, &expense.OwnerID); scanErr != nil {
			log.Err(scanErr).Str("func", "expenseRepository.ListExpenses").Int64("user_id", userID).Msg("failed to scan expense row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		expenses = append(expenses, expense)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "expenseRepository.ListExpenses").Int64("user_id", userID).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return expenses, nil
}

func scanExpense(row rowScanner, e *models.Expense, extra ...any) error {
	dest := []any{
		&e.ID,
		&e.TripID,
		&e.DestinationID,
		&e.Amount,
		&e.Currency,
		&e.Category,
		&e.PaymentMethod,
		&e.Description,
		&e.ExpenseDate,
		&e.ExpenseTime,
		timestamp{&e.CreatedAt},
		timestamp{&e.UpdatedAt},
	}
	return row.Scan(append(dest, extra...)...)
}
