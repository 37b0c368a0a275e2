package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

type closer struct {
	calls int
	err   error
}

func (c *closer) Close() error {
	c.calls++
	return c.err
}

func TestCloseLogged(t *testing.T) {
	c := &closer{err: errors.New("busy")}
	CloseLogged(c, "storage", logger.NewNop())
	assert.Equal(t, 1, c.calls)

	assert.NotPanics(t, func() { CloseLogged(nil, "nothing", logger.NewNop()) })
}
