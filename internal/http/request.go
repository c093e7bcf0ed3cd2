package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"spendlog/internal/core"
	"spendlog/internal/services"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// amountString accepts both JSON strings and JSON numbers, keeping the
// exact decimal text either way.
type amountString string

func (a *amountString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amountString(n.String())
	return nil
}

type createExpenseRequest struct {
	Amount      amountString `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Date        string       `json:"date"`
}

type updateExpenseRequest struct {
	Amount      *amountString `json:"amount"`
	Category    *string       `json:"category"`
	Description *string       `json:"description"`
	Date        *string       `json:"date"`
}

func decodeBody(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}

func (req *createExpenseRequest) toInput(ownerID string) (services.CreateExpenseInput, error) {
	amount, err := core.ParseMoney(string(req.Amount))
	if err != nil {
		return services.CreateExpenseInput{}, &services.ValidationError{
			Field:   "amount",
			Message: "amount must be a positive number",
		}
	}

	if strings.TrimSpace(req.Date) == "" {
		return services.CreateExpenseInput{}, &services.ValidationError{
			Field:   "date",
			Message: "date is required",
		}
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.CreateExpenseInput{}, &services.ValidationError{
			Field:   "date",
			Message: "date must be a valid date",
		}
	}

	return services.CreateExpenseInput{
		OwnerID:     ownerID,
		Amount:      amount,
		Category:    core.Category(strings.TrimSpace(req.Category)),
		Description: sanitizeInput(req.Description),
		Date:        date,
	}, nil
}

func (req *updateExpenseRequest) toInput() (services.UpdateExpenseInput, error) {
	var input services.UpdateExpenseInput

	if req.Amount != nil {
		amount, err := core.ParseMoney(string(*req.Amount))
		if err != nil {
			return input, &services.ValidationError{
				Field:   "amount",
				Message: "amount must be a positive number",
			}
		}
		input.Amount = &amount
	}
	if req.Category != nil {
		category := core.Category(strings.TrimSpace(*req.Category))
		input.Category = &category
	}
	if req.Description != nil {
		description := sanitizeInput(*req.Description)
		input.Description = &description
	}
	if req.Date != nil {
		date, err := core.ParseDate(*req.Date)
		if err != nil {
			return input, &services.ValidationError{
				Field:   "date",
				Message: "date must be a valid date",
			}
		}
		input.Date = &date
	}

	return input, nil
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
