package domain

import (
	"errors"
	"fmt"
	"strings"
)

// IncludeNotFoundError is returned when an #include cannot be found in any search directory.
type IncludeNotFoundError struct {
	SearchValue string
}

func (e *IncludeNotFoundError) Error() string {
	return fmt.Sprintf("the preprocessor cache could not resolve the include '%s'", e.SearchValue)
}

// IdentifierNotDefinedError is returned when a condition references an identifier
// without a definition, or uses a form the evaluator does not support.
type IdentifierNotDefinedError struct {
	Identifier string
	Expression string
}

func (e *IdentifierNotDefinedError) Error() string {
	if e.Expression != "" {
		return fmt.Sprintf("preprocessor identifier '%s' was not defined when evaluating '%s'", e.Identifier, e.Expression)
	}
	return fmt.Sprintf("preprocessor identifier '%s' was not defined", e.Identifier)
}

// ResolutionError wraps a resolution failure with the chain of files that led to it,
// outermost file first.
type ResolutionError struct {
	Chain []string
	Err   error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%v (while resolving %s)", e.Err, strings.Join(e.Chain, " -> "))
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// IsResolutionFailure reports whether err means the dependencies of a source
// cannot be determined, as opposed to the cache being unavailable. A compile
// that hits one can still run where its headers need not be listed.
func IsResolutionFailure(err error) bool {
	var (
		notFound   *IncludeNotFoundError
		notDefined *IdentifierNotDefinedError
		resolution *ResolutionError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &notDefined) ||
		errors.As(err, &resolution) ||
		errors.Is(err, ErrPathNotAbsolute) ||
		errors.Is(err, ErrDependencyResolutionFailed)
}
