package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"spendlog/internal/auth"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/services"
	"spendlog/internal/storage"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input, err := req.toInput(ownerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	expense, err := s.svc.Create(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Expense created",
		log.FieldOwnerID, ownerID,
		log.FieldExpenseID, expense.ID,
		log.FieldAmountCents, expense.Amount.Cents,
		log.FieldCategory, expense.Category.String())

	writeMessage(w, http.StatusCreated, "Expense created successfully", toExpensePayload(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	filter := storage.ListFilter{Sort: storage.SortDateDesc}
	if raw := r.URL.Query().Get("category"); strings.TrimSpace(raw) != "" {
		category, err := core.ParseCategory(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid category filter")
			return
		}
		filter.Category = &category
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("sort")); raw == string(storage.SortDateAsc) {
		filter.Sort = storage.SortDateAsc
	}

	result, err := s.svc.List(r.Context(), ownerID, filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeList(w, result.Count, result.Total.String(), toExpensePayloads(result.Expenses))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	expense, err := s.svc.Get(r.Context(), ownerID, mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toExpensePayload(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req updateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	expense, err := s.svc.Update(r.Context(), ownerID, mux.Vars(r)["id"], input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Expense updated",
		log.FieldOwnerID, ownerID,
		log.FieldExpenseID, expense.ID)

	writeMessage(w, http.StatusOK, "Expense updated successfully", toExpensePayload(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id := mux.Vars(r)["id"]
	if err := s.svc.Delete(r.Context(), ownerID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Expense deleted",
		log.FieldOwnerID, ownerID,
		log.FieldExpenseID, id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	summary, err := s.svc.SummaryByCategory(r.Context(), ownerID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, toSummaryPayloads(summary))
}

// writeServiceError maps service errors onto HTTP responses.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Expense not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized to access this expense")
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
