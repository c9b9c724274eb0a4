package postgres

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/invorya/stock-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isTransient clasifica errores de almacenamiento recuperables: fallos de red,
// timeouts y SQLSTATE de conexión (08xxx) o de recursos (53xxx, 57P03).
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "53") || code == "57P03"
	}
	return false
}

// withRetry reintenta fn con backoff exponencial mientras el error sea
// transitorio. Agotados los intentos, el fallo se reporta como
// domain.ErrStorageUnavailable para que la API responda 503.
func withRetry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	backoff := 50 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return domain.ErrStorageUnavailable
		}
		backoff *= 2
	}
	return domain.ErrStorageUnavailable
}
