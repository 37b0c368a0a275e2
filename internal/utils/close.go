package utils

import (
	"io"

	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

// CloseLogged closes c and logs a failure under the given name.
func CloseLogged(c io.Closer, name string, log logger.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close",
			logger.String("resource", name),
			logger.Error(err))
	}
}
