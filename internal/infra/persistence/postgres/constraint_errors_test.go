package postgres

import (
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestConstraintViolationClassification(t *testing.T) {
	wrapped := func(code string) error {
		return errors.Wrap(&pgconn.PgError{Code: code, Message: "boom"}, "insert")
	}

	tests := []struct {
		name   string
		err    error
		unique bool
		fk     bool
		check  bool
	}{
		{name: "pg unique", err: wrapped(pgerrcode.UniqueViolation), unique: true},
		{name: "gorm duplicated", err: gorm.ErrDuplicatedKey, unique: true},
		{name: "pg foreign key", err: wrapped(pgerrcode.ForeignKeyViolation), fk: true},
		{name: "gorm foreign key", err: gorm.ErrForeignKeyViolated, fk: true},
		{name: "pg check", err: wrapped(pgerrcode.CheckViolation), check: true},
		{name: "pg other", err: wrapped(pgerrcode.SerializationFailure)},
		{name: "plain", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, isUniqueConstraintViolation(tt.err))
			assert.Equal(t, tt.fk, isForeignKeyConstraintViolation(tt.err))
			assert.Equal(t, tt.check, isCheckConstraintViolation(tt.err))
		})
	}
}
