package handlers

import (
	"os"
	"testing"

	"github.com/username/finsight/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}
