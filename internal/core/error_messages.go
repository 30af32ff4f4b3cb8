// Package core provides the consolidation and cleaning pipeline.
//
// # Error Codes Reference
//
// The pipeline itself never fails on data. The codes below cover the
// orchestration around it (uploads, preconditions, export) so that users can
// quote a code to support staff.
//
// # Pipeline Errors (PIPE001-PIPE099)
//
//	PIPE001 - No sources: nothing has been uploaded yet
//	          Action: Upload at least one CSV file
//	          Patterns: "no sources"
//
//	PIPE002 - No fields: no concept/target field is defined
//	          Action: Define at least one concept for the mapping
//	          Patterns: "no fields"
//
//	PIPE003 - Unknown source: the mapping refers to a source that does not exist
//	          Patterns: "source not found"
//
//	PIPE004 - Unknown project: the project expired or never existed
//	          Patterns: "project not found"
//
//	PIPE005 - No result: export requested before processing
//	          Patterns: "no result"
//
//	PIPE006 - Invalid recipe or request body
//	          Patterns: "invalid recipe", "invalid request"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid CSV             Patterns: "invalid csv"
//	FILE003 - Encoding error          Patterns: "encoding error"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Patterns: "empty file"
//
// # Run Errors (UPL001-UPL099)
//
//	UPL002 - System busy              Patterns: "too many runs"
//	UPL004 - Request cancelled        Patterns: "context canceled"
//	UPL005 - Request timeout          Patterns: "context deadline exceeded"
//
// # Database Sink Errors (DB001-DB099)
//
//	DB004 - Connection refused        Patterns: "connection refused"
//	DB006 - Timeout                   Patterns: "timeout"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests       Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Returned when no pattern matches. Check the application logs for the
// technical error carrying the same request id.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Pipeline preconditions (PIPE001-PIPE006)
	// =========================================================================
	{
		pattern: "no sources",
		msg: UserMessage{
			Message: "Por favor, sube al menos un archivo CSV.",
			Action:  "Sube un archivo antes de consolidar",
			Code:    "PIPE001",
		},
	},
	{
		pattern: "no fields",
		msg: UserMessage{
			Message: "Por favor, define al menos un concepto para el mapeo.",
			Action:  "Agrega un concepto y asígnalo a una columna",
			Code:    "PIPE002",
		},
	},
	{
		pattern: "source not found",
		msg: UserMessage{
			Message: "El archivo indicado no existe en el proyecto",
			Action:  "Vuelve a subir el archivo",
			Code:    "PIPE003",
		},
	},
	{
		pattern: "project not found",
		msg: UserMessage{
			Message: "El proyecto no existe o expiró",
			Action:  "Crea un proyecto nuevo y vuelve a subir los archivos",
			Code:    "PIPE004",
		},
	},
	{
		pattern: "no result",
		msg: UserMessage{
			Message: "Todavía no hay datos procesados",
			Action:  "Consolida y limpia los datos antes de descargar",
			Code:    "PIPE005",
		},
	},
	{
		pattern: "invalid recipe",
		msg: UserMessage{
			Message: "La definición del proceso no es válida",
			Action:  "Revisa los campos, las fuentes y las reglas",
			Code:    "PIPE006",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "La solicitud no es válida",
			Action:  "Revisa el formato JSON enviado",
			Code:    "PIPE006",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "El archivo supera el tamaño máximo permitido",
			Action:  "Divide el archivo en partes más pequeñas",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "Error al procesar el archivo CSV.",
			Action:  "Verifica que el archivo esté separado por comas y tenga encabezados",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "El archivo contiene caracteres no válidos",
			Action:  "Guarda el archivo con codificación UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No se seleccionó ningún archivo",
			Action:  "Selecciona un archivo CSV para subir",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "El archivo está vacío",
			Action:  "Sube un archivo CSV con encabezados y filas",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Run Errors (UPL002-UPL005)
	// =========================================================================
	{
		pattern: "too many runs",
		msg: UserMessage{
			Message: "Hay demasiados procesos en curso",
			Action:  "Espera un momento e intenta de nuevo",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "La solicitud fue cancelada",
			Action:  "Intenta de nuevo",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "La solicitud tardó demasiado",
			Action:  "Intenta con archivos más pequeños",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Database sink (DB004-DB006)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "No se pudo conectar a la base de datos",
			Action:  "Intenta de nuevo en unos momentos",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "La operación excedió el tiempo límite",
			Action:  "Intenta de nuevo más tarde",
			Code:    "DB006",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Demasiadas solicitudes",
			Action:  "Espera un momento antes de intentar de nuevo",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ocurrió un error desconocido.",
	Action:  "Intenta de nuevo o contacta a soporte",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("process: %w", service.ErrNoSources))
//	// msg.Code == "PIPE001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
