// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
package domain

import (
	"fmt"
	"strings"
	"time"

	"bate-papo/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Broadcast is the recipient designator addressing every participant.
const Broadcast = "all"

type Kind string

const (
	KindMessage        Kind = "message"
	KindPrivateMessage Kind = "private_message"
	KindStatus         Kind = "status"
)

// Message is an entry of the chat log.
// ID, From, Kind and CreatedAt never change after creation.
type Message struct {
	ID        uuid.UUID
	From      string
	To        string
	Text      string
	Kind      Kind
	CreatedAt time.Time
}

// IsStatus reports whether the message is a system generated join/leave notice.
func (m Message) IsStatus() bool {
	return m.Kind == KindStatus
}

var validate = validator.New()

// MessageDraft carries the client supplied fields of a message.
// Status messages are never client supplied.
type MessageDraft struct {
	To   string `validate:"required"`
	Text string `validate:"required"`
	Kind Kind   `validate:"required,oneof=message private_message"`
}

// FieldError names a rejected field and the rule it broke.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Rule))
	}
	return fmt.Sprintf("%s: %s", errors.ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrValidation
}

// Normalize trims the draft and validates it.
// The returned error wraps errors.ErrValidation.
func (d MessageDraft) Normalize() (MessageDraft, error) {
	d.To = strings.TrimSpace(d.To)
	d.Text = strings.TrimSpace(d.Text)
	d.Kind = Kind(strings.TrimSpace(string(d.Kind)))

	if err := validate.Struct(d); err != nil {
		var fieldErrors validator.ValidationErrors
		if !asValidationErrors(err, &fieldErrors) {
			return MessageDraft{}, fmt.Errorf("%w: %v", errors.ErrValidation, err)
		}
		out := &ValidationError{}
		for _, fe := range fieldErrors {
			out.Fields = append(out.Fields, FieldError{Field: strings.ToLower(fe.Field()), Rule: fe.Tag()})
		}
		return MessageDraft{}, out
	}
	return d, nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	ve, ok := err.(validator.ValidationErrors)
	if ok {
		*target = ve
	}
	return ok
}
