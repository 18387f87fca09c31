package services

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindConfiguration  ErrorKind = "configuration"
	KindValidation     ErrorKind = "validation"
	KindAuthentication ErrorKind = "authentication"
	KindUpstream       ErrorKind = "upstream"
	KindPersistence    ErrorKind = "persistence"
	KindNotFound       ErrorKind = "not_found"
)

// Error : erreur métier typée, la couche HTTP choisit le statut à partir de Kind
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func configurationError(format string, args ...any) *Error {
	return newError(KindConfiguration, nil, format, args...)
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, nil, format, args...)
}

func authenticationError(format string, args ...any) *Error {
	return newError(KindAuthentication, nil, format, args...)
}

func upstreamError(err error, format string, args ...any) *Error {
	return newError(KindUpstream, err, format, args...)
}

func persistenceError(err error, format string, args ...any) *Error {
	return newError(KindPersistence, err, format, args...)
}

func notFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, nil, format, args...)
}

// KindOf renvoie la catégorie d'une erreur, persistence par défaut pour les erreurs non typées
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindPersistence
}

// ErrNotFound est renvoyée par les stores quand une ligne n'existe pas
var ErrNotFound = errors.New("introuvable")
