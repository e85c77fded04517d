package services

import (
	"errors"

	"gorm.io/gorm"
)

// Common service errors
var (
	ErrNotFound            = errors.New("registro no encontrado")
	ErrInvalidRange        = errors.New("la fecha de salida debe ser posterior a la fecha de entrada")
	ErrInvalidPassword     = errors.New("contraseña inválida")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrInvalidState        = errors.New("transición de estado inválida")
	ErrRentalTypeMismatch  = errors.New("el tipo de alquiler de la propiedad no permite esta operación")
	ErrDuplicate           = errors.New("registro duplicado")
	ErrInvalidRecoveryCode = errors.New("código de recuperación inválido o expirado")
)

// mapNotFound converts gorm's record-not-found into the service sentinel so
// handlers can translate it into a 404.
func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
