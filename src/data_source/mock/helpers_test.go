package mock

import (
	"io"
	"math/rand/v2"
	"testing"
	"time"

	"token-pulse/src/logger"
	"token-pulse/src/utils"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *logger.Logger {
	return logger.NewLoggerWithOutput("ERROR", "test", io.Discard)
}

func newTestFactory(t *testing.T, clock utils.Clock) *TokenFactory {
	t.Helper()
	return NewTokenFactory(rand.New(rand.NewPCG(7, 11)), clock)
}
