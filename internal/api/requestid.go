package api

import (
    "context"
    "net/http"

    "github.com/google/uuid"
    "go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// WithRequestID tags every request with an id, taken from the incoming
// header when it is a valid UUID, and puts a logger carrying it in the
// request context.
func WithRequestID(next http.Handler, log *zap.Logger) http.Handler {
    if log == nil { log = zap.NewNop() }
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        id := r.Header.Get(RequestIDHeader)
        if _, err := uuid.Parse(id); err != nil {
            id = uuid.NewString()
        }
        w.Header().Set(RequestIDHeader, id)
        l := log.With(zap.String("request_id", id))
        l.Debug("request", zap.String("method", r.Method), zap.String("uri", r.URL.RequestURI()))
        next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, l)))
    })
}

func logger(r *http.Request, def *zap.Logger) *zap.Logger {
    if l, ok := r.Context().Value(ctxKey{}).(*zap.Logger); ok { return l }
    if def != nil { return def }
    return zap.NewNop()
}
