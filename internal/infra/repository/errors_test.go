package repository

import (
	"errors"
	"fmt"
	"testing"

	repo "charforge/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapGormError(t *testing.T) {
	other := errors.New("connection reset")
	fk := &pgconn.PgError{Code: "23503"}

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, repo.ErrNotFound},
		{"wrapped not found", fmt.Errorf("find user: %w", gorm.ErrRecordNotFound), repo.ErrNotFound},
		{"translated duplicate", gorm.ErrDuplicatedKey, repo.ErrDuplicate},
		{"raw unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, repo.ErrDuplicate},
		{"other pg error", fk, fk},
		{"unrelated", other, other},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mapGormError(tc.in))
		})
	}
}
