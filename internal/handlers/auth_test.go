package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterConflict(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
		ok     bool
	}{
		{
			"username index violation",
			errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_username" (SQLSTATE 23505)`),
			msgUsernameTaken,
			true,
		},
		{
			"email index violation",
			errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email" (SQLSTATE 23505)`),
			msgEmailTaken,
			true,
		},
		{
			"unrelated database error",
			errors.New("connection refused"),
			"",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, ok := registerConflict(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}
