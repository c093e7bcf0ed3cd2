package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/storage"
)

// Repository is the persistence surface the expense service needs.
// Both the sqlite and the in-memory backends satisfy it.
type Repository interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context, ownerID string, filter storage.ListFilter) ([]core.Expense, error)
	SummarizeByCategory(ctx context.Context, ownerID string) ([]core.CategorySummary, error)
}

// EventPublisher receives a notification after each successful mutation.
// Implementations must not block the request path for long; failures are
// logged and never surfaced to the caller.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ownerID, expenseID, action string) error
}

// ExpenseService enforces validation and ownership on top of a Repository.
type ExpenseService struct {
	repo   Repository
	events EventPublisher
	logger *log.Logger
}

// NewExpenseService creates the service. events may be nil when no message
// broker is configured.
func NewExpenseService(repo Repository, events EventPublisher, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		repo:   repo,
		events: events,
		logger: logger.WithComponent(log.ComponentExpense),
	}
}

// CreateExpenseInput carries a fully parsed create request.
type CreateExpenseInput struct {
	OwnerID     string
	Amount      core.Money
	Category    core.Category
	Description string
	Date        core.Date
}

// UpdateExpenseInput carries a partial update; nil fields keep their
// current value.
type UpdateExpenseInput struct {
	Amount      *core.Money
	Category    *core.Category
	Description *string
	Date        *core.Date
}

// ListResult is a page of expenses with aggregate figures for the same set.
type ListResult struct {
	Expenses []core.Expense
	Count    int
	Total    core.Money
}

// Create validates and persists a new expense for its owner.
func (s *ExpenseService) Create(ctx context.Context, input CreateExpenseInput) (core.Expense, error) {
	expense := core.Expense{
		OwnerID:     input.OwnerID,
		Amount:      input.Amount,
		Category:    input.Category,
		Description: input.Description,
		Date:        input.Date,
	}
	if err := validateExpense(expense); err != nil {
		return core.Expense{}, err
	}

	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("creating expense: %w", err)
	}

	s.publish(ctx, created, "created")
	return created, nil
}

// Get returns an expense after checking it belongs to ownerID.
func (s *ExpenseService) Get(ctx context.Context, ownerID, id string) (core.Expense, error) {
	return s.ownedExpense(ctx, ownerID, id)
}

// List returns the owner's expenses, optionally filtered by category,
// together with the record count and the exact sum of their amounts.
func (s *ExpenseService) List(ctx context.Context, ownerID string, filter storage.ListFilter) (ListResult, error) {
	expenses, err := s.repo.ListExpenses(ctx, ownerID, filter)
	if err != nil {
		return ListResult{}, fmt.Errorf("listing expenses: %w", err)
	}
	return ListResult{
		Expenses: expenses,
		Count:    len(expenses),
		Total:    core.SumAmounts(expenses),
	}, nil
}

// Update applies a partial update to an owned expense. The merged record is
// revalidated before it is written.
func (s *ExpenseService) Update(ctx context.Context, ownerID, id string, input UpdateExpenseInput) (core.Expense, error) {
	current, err := s.ownedExpense(ctx, ownerID, id)
	if err != nil {
		return core.Expense{}, err
	}

	if input.Amount != nil {
		current.Amount = *input.Amount
	}
	if input.Category != nil {
		current.Category = *input.Category
	}
	if input.Description != nil {
		current.Description = *input.Description
	}
	if input.Date != nil {
		current.Date = *input.Date
	}

	if err := validateExpense(current); err != nil {
		return core.Expense{}, err
	}

	updated, err := s.repo.UpdateExpense(ctx, current)
	if err != nil {
		if errors.Is(err, storage.ErrExpenseNotFound) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("updating expense: %w", err)
	}

	s.publish(ctx, updated, "updated")
	return updated, nil
}

// Delete removes an owned expense. Deleting an id that does not exist
// succeeds, so retried deletes stay safe.
func (s *ExpenseService) Delete(ctx context.Context, ownerID, id string) error {
	existing, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrExpenseNotFound) {
			return nil
		}
		return fmt.Errorf("loading expense: %w", err)
	}
	if existing.OwnerID != ownerID {
		return ErrForbidden
	}

	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	s.publish(ctx, existing, "deleted")
	return nil
}

// SummaryByCategory aggregates the owner's spending per category.
func (s *ExpenseService) SummaryByCategory(ctx context.Context, ownerID string) ([]core.CategorySummary, error) {
	summary, err := s.repo.SummarizeByCategory(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("summarizing expenses: %w", err)
	}
	return summary, nil
}

func (s *ExpenseService) ownedExpense(ctx context.Context, ownerID, id string) (core.Expense, error) {
	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrExpenseNotFound) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("loading expense: %w", err)
	}
	if expense.OwnerID != ownerID {
		return core.Expense{}, ErrForbidden
	}
	return expense, nil
}

func (s *ExpenseService) publish(ctx context.Context, e core.Expense, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, e.OwnerID, e.ID, action); err != nil {
		s.logger.WarnContext(ctx, "failed to publish expense event",
			log.FieldExpenseID, e.ID,
			"action", action,
			"error", err)
	}
}

// validateExpense maps domain validation failures onto field errors the
// transport layer can return directly.
func validateExpense(e core.Expense) error {
	err := e.Validate()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrInvalidAmount):
		return newValidationError("amount", "amount must be a positive number")
	case errors.Is(err, core.ErrInvalidDate):
		return newValidationError("date", "date must be a valid date")
	case errors.Is(err, core.ErrEmptyDescription):
		return newValidationError("description", "description is required")
	case errors.Is(err, core.ErrDescriptionTooLong):
		return newValidationError("description", "description must be at most 200 characters")
	case errors.Is(err, core.ErrInvalidCategory):
		return newValidationError("category", "category must be one of: "+categoryNames())
	default:
		return err
	}
}

func categoryNames() string {
	names := make([]string, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}
