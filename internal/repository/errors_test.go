package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@example.com' for key 'uq_users_email'"}

	assert.True(t, isDuplicateKey(dup))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert user: %w", dup)))
	assert.True(t, isDuplicateKey(errors.New("Error 1062: Duplicate entry")))

	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452, Message: "foreign key constraint fails"}))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
	assert.False(t, isDuplicateKey(nil))
}
