package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRequestID      = "request_id"
	FieldClientIP       = "client_ip"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldStatusCode     = "status_code"
	FieldDuration       = "duration_ms"
	FieldUserAgent      = "user_agent"
	FieldError          = "error"
	FieldOwnerID        = "owner_id"
	FieldExpenseID      = "expense_id"
	FieldCategory       = "category"
	FieldAmountCents    = "amount_cents"
	FieldIdempotencyKey = "idempotency_key"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentExpense     = "expense"
	ComponentAuth        = "auth"
	ComponentIdempotency = "idempotency"
	ComponentAMQP        = "amqp"
	ComponentBackend     = "backend"
)
