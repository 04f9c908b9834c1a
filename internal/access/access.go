// Package access decides whose data a caller may see.
//
// Admins see everyone, nutritionists see themselves and their assigned
// clients, users see only themselves. Denials look like missing users so
// that ids of other clients are not revealed.
package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fdg312/nutridesk/internal/userctx"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrUnauthorized = errors.New("no authenticated user")
	ErrStaffOnly    = errors.New("nutritionist or admin role required")
)

// Assignments answers whether a nutritionist looks after a client.
type Assignments interface {
	IsAssigned(ctx context.Context, nutritionistID, clientID string) (bool, error)
}

type Checker struct {
	assignments Assignments
}

func NewChecker(assignments Assignments) *Checker {
	return &Checker{assignments: assignments}
}

// Subject returns the user the request is about: target when set, else the
// caller. It fails when the caller may not view target.
func (c *Checker) Subject(ctx context.Context, target string) (string, error) {
	caller, ok := userctx.GetUserID(ctx)
	if !ok {
		return "", ErrUnauthorized
	}

	target = strings.TrimSpace(target)
	if target == "" || target == caller {
		return caller, nil
	}

	switch userctx.GetRole(ctx) {
	case userctx.RoleAdmin:
		return target, nil
	case userctx.RoleNutritionist:
		assigned, err := c.assignments.IsAssigned(ctx, caller, target)
		if err != nil {
			return "", fmt.Errorf("failed to check assignment: %w", err)
		}
		if assigned {
			return target, nil
		}
	}
	return "", ErrNotFound
}

// RequireStaff fails unless the caller is an admin or a nutritionist.
func RequireStaff(ctx context.Context) error {
	if _, ok := userctx.GetUserID(ctx); !ok {
		return ErrUnauthorized
	}
	if !userctx.IsStaff(ctx) {
		return ErrStaffOnly
	}
	return nil
}

// WriteError maps access errors to the JSON error envelope. It returns false
// for errors it does not recognise.
func WriteError(w http.ResponseWriter, err error) bool {
	var status int
	var code, message string
	switch {
	case errors.Is(err, ErrNotFound):
		status, code, message = http.StatusNotFound, "user_not_found", "User not found"
	case errors.Is(err, ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "unauthorized", "Unauthorized"
	case errors.Is(err, ErrStaffOnly):
		status, code, message = http.StatusForbidden, "forbidden", ErrStaffOnly.Error()
	default:
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
	return true
}
