package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func scripted(answers ...string) passwordReader {
	return func(string) ([]byte, error) {
		next := answers[0]
		answers = answers[1:]

		return []byte(next), nil
	}
}

func TestRun(t *testing.T) {
	hash, err := run(scripted("hunter2", "hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword(hash, []byte("hunter2")))

	_, err = run(scripted("hunter2", "hunter3"), bcrypt.MinCost)
	assert.ErrorIs(t, err, errPasswordMismatch)

	_, err = run(scripted(""), bcrypt.MinCost)
	assert.ErrorIs(t, err, errEmptyPassword)
}

func TestWriteEntry(t *testing.T) {
	var buf bytes.Buffer

	writeEntry(&buf, "admin", []byte("$2a$04$abc"))
	assert.Equal(t, "\"admin\": \"$2a$04$abc\"\n", buf.String())

	buf.Reset()
	writeEntry(&buf, "", []byte("$2a$04$abc"))
	assert.Equal(t, "$2a$04$abc\n", buf.String())
}
