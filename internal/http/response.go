package http

import (
	"encoding/json"
	"net/http"
	"time"

	"spendlog/internal/core"
)

// expensePayload is the wire representation of an expense.
type expensePayload struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toExpensePayload(e core.Expense) expensePayload {
	return expensePayload{
		ID:          e.ID,
		Amount:      e.Amount.String(),
		Category:    e.Category.String(),
		Description: e.Description,
		Date:        e.Date.String(),
		CreatedAt:   e.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toExpensePayloads(expenses []core.Expense) []expensePayload {
	out := make([]expensePayload, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpensePayload(e))
	}
	return out
}

type summaryPayload struct {
	Category string `json:"category"`
	Total    string `json:"total"`
	Count    int    `json:"count"`
}

func toSummaryPayloads(rows []core.CategorySummary) []summaryPayload {
	out := make([]summaryPayload, 0, len(rows))
	for _, r := range rows {
		out = append(out, summaryPayload{
			Category: r.Category.String(),
			Total:    r.Total.String(),
			Count:    r.Count,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, map[string]any{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func writeList(w http.ResponseWriter, count int, total string, data any) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
		"total":   total,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
