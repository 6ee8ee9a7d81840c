// Package ferrors defines the typed error taxonomy shared across Foundry's
// compiler and scheduler core.
package ferrors

import (
	"fmt"
	"sort"
	"strings"
)

// DuplicateError indicates a name collided with an existing catalog or DAG entry.
type DuplicateError struct {
	Kind string
	Name string
}

func NewDuplicate(kind, name string) error {
	return &DuplicateError{Kind: kind, Name: name}
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.Name)
}

// NotFoundError indicates a reference to an unknown entity.
type NotFoundError struct {
	Kind string
	Name string
}

func NewNotFound(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// CycleDetectedError carries the node names participating in a dependency cycle.
type CycleDetectedError struct {
	Nodes []string
}

func NewCycleDetected(nodes []string) error {
	return &CycleDetectedError{Nodes: append([]string(nil), nodes...)}
}

func (e *CycleDetectedError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Nodes, " -> "))
}

// AstSyntaxError wraps a malformed statement propagated from the parser collaborator.
type AstSyntaxError struct {
	Message string
	Err     error
}

func NewAstSyntax(message string, err error) error {
	return &AstSyntaxError{Message: message, Err: err}
}

func (e *AstSyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.Message)
}

func (e *AstSyntaxError) Unwrap() error { return e.Err }

// MissingConfigError indicates a required property was absent.
type MissingConfigError struct {
	Field string
}

func NewMissingConfig(field string) error {
	return &MissingConfigError{Field: field}
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required config: %s", e.Field)
}

// ValidationError collects one or more version-matrix or structural rule violations.
type ValidationError struct {
	Messages []string
}

func NewValidation(messages ...string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// RefNotFoundError indicates a template-time `ref`/`source` lookup failed.
type RefNotFoundError struct {
	Kind string
	Name string
}

func NewRefNotFound(kind, name string) error {
	return &RefNotFoundError{Kind: kind, Name: name}
}

func (e *RefNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// IOError captures a filesystem failure along with the failing path.
type IOError struct {
	Path string
	Err  error
}

func NewIO(path string, err error) error {
	return &IOError{Path: path, Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error at %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UnsupportedError indicates a construct the parser recognizes but the core does not yet handle.
type UnsupportedError struct {
	Message string
}

func NewUnsupported(message string) error {
	return &UnsupportedError{Message: message}
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Message)
}

// ExecutionError wraps a failure returned by a downstream collaborator (DB, HTTP, subprocess).
type ExecutionError struct {
	NodeName string
	Err      error
}

func NewExecution(nodeName string, err error) error {
	return &ExecutionError{NodeName: nodeName, Err: err}
}

func (e *ExecutionError) Error() string {
	if e.NodeName == "" {
		return fmt.Sprintf("execution error: %v", e.Err)
	}
	return fmt.Sprintf("execution error on %s: %v", e.NodeName, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// InvalidDirectionError indicates a malformed selector string.
type InvalidDirectionError struct {
	Selector string
}

func NewInvalidDirection(selector string) error {
	return &InvalidDirectionError{Selector: selector}
}

func (e *InvalidDirectionError) Error() string {
	return fmt.Sprintf("invalid selector: %q", e.Selector)
}

// ErrorBag accumulates validation failures and fails once with the concatenated list.
type ErrorBag struct {
	messages []string
}

func (b *ErrorBag) Add(format string, args ...interface{}) {
	b.messages = append(b.messages, fmt.Sprintf(format, args...))
}

func (b *ErrorBag) CheckOneOf(groupName string, flags map[string]bool) {
	count := 0
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, on := range flags {
		if on {
			count++
		}
	}
	if count != 1 {
		b.Add("exactly one of [%s] must be set for %s", strings.Join(names, ", "), groupName)
	}
}

func (b *ErrorBag) CheckRequires(parentName string, parentSet bool, depName string, depSet bool) {
	if parentSet && !depSet {
		b.Add("%s requires %s to be set", parentName, depName)
	}
}

func (b *ErrorBag) Empty() bool { return len(b.messages) == 0 }

func (b *ErrorBag) Finish() error {
	if b.Empty() {
		return nil
	}
	return NewValidation(b.messages...)
}
