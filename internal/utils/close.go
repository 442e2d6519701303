package utils

import (
	"io"

	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

// CloseLogged closes c and logs a failure under name.
// Use in shutdown paths where there is nobody left to return the error to.
func CloseLogged(c io.Closer, name string, log logger.Logger) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", name), logger.Error(err))
	}
}
