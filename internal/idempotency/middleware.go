package idempotency

import (
	"bytes"
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"spendlog/internal/log"
)

// Header carries the client-generated deduplication token.
const Header = "Idempotency-Key"

var (
	replaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spendlog_idempotency_requests_total",
		Help: "Mutating requests seen by the idempotency layer, by outcome",
	}, []string{"outcome"}) // executed | replayed | shared
)

// OwnerFunc extracts the authenticated owner identity from the request
// context. The second return is false when the request is unauthenticated.
type OwnerFunc func(ctx context.Context) (string, bool)

// Middleware replays recorded responses for retried mutating requests.
//
// Requests without a token, read-only verbs, and unauthenticated requests
// pass through untouched. For everything else the handler runs inside a
// per-key single-flight section: concurrent deliveries of the same
// (owner, token) pair execute the handler exactly once and all receive the
// same response, closing the check-then-act race.
type Middleware struct {
	store  Store
	owner  OwnerFunc
	logger *log.Logger
	group  singleflight.Group
}

// NewMiddleware builds the middleware around an injectable store.
func NewMiddleware(store Store, owner OwnerFunc, logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentIdempotency)
	}
	return &Middleware{
		store:  store,
		owner:  owner,
		logger: logger,
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// Wrap returns the handler with idempotency protection applied.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !mutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		token := r.Header.Get(Header)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		ownerID, ok := m.owner(r.Context())
		if !ok {
			// Authentication failures are handled upstream; nothing to dedupe.
			next.ServeHTTP(w, r)
			return
		}

		key := ownerID + ":" + token

		v, _, shared := m.group.Do(key, func() (interface{}, error) {
			if cached, ok := m.store.Get(key); ok {
				replaysTotal.WithLabelValues("replayed").Inc()
				m.logger.InfoContext(r.Context(), "Replaying recorded response",
					log.FieldOwnerID, ownerID,
					log.FieldIdempotencyKey, token,
					log.FieldStatusCode, cached.Status)
				return cached, nil
			}

			rec := newRecorder()
			// A client disconnect must not abort the mutation mid-flight;
			// the recorded response has to reflect a completed execution.
			next.ServeHTTP(rec, r.WithContext(context.WithoutCancel(r.Context())))
			resp := rec.response()

			// Failures are recorded too: a retry replays whatever the
			// first execution produced.
			m.store.Set(key, resp)
			replaysTotal.WithLabelValues("executed").Inc()
			return resp, nil
		})
		if shared {
			replaysTotal.WithLabelValues("shared").Inc()
		}

		writeResponse(w, v.(Response))
	})
}

// recorder captures the handler's response instead of sending it, so the
// middleware can both record and emit it.
type recorder struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{status: http.StatusOK, header: make(http.Header)}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
}

func (r *recorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *recorder) response() Response {
	return Response{
		Status:      r.status,
		ContentType: r.header.Get("Content-Type"),
		Body:        append([]byte(nil), r.body.Bytes()...),
	}
}

func writeResponse(w http.ResponseWriter, resp Response) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
