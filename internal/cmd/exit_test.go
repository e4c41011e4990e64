package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"

	errwrap "github.com/scryinline/scryinline/internal/errors"
)

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, foundry.ExitFailure, ExitCodeFor(errors.New("boom")))
	assert.Equal(t, foundry.ExitConfigInvalid, ExitCodeFor(errwrap.NewConfigInvalidError("bad port")))
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, ExitCodeFor(errwrap.NewServiceUnavailableError("down")))
	assert.Equal(t, foundry.ExitFailure, ExitCodeFor(errwrap.NewInvalidInputError("bad format")))
}

func TestWriteFatal(t *testing.T) {
	var buf bytes.Buffer
	writeFatal(&buf, "Command execution failed", errwrap.WrapConfigInvalid(context.Background(), errors.New("server.port 70000 out of range"), "invalid configuration"))

	assert.Contains(t, buf.String(), "[CONFIG_INVALID]: invalid configuration")
	assert.Contains(t, buf.String(), "Cause: server.port 70000 out of range")

	buf.Reset()
	writeFatal(&buf, "failed", nil)
	assert.Equal(t, "FATAL: failed\n", buf.String())
}
