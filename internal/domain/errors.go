package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrInvariantViolation = errors.New("violación de invariante de stock")
	ErrConflict           = errors.New("conflicto de concurrencia")
	ErrStorageUnavailable = errors.New("almacenamiento no disponible")
	ErrUnauthorized       = errors.New("no autorizado")
)
