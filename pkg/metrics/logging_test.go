package metrics

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestForwardedMessage(t *testing.T) {
	logger := logrus.New()

	e := logrus.NewEntry(logger)
	e.Message = "airdropped lamports"
	assert.Equal(t, "airdropped lamports", forwardedMessage(e))

	e = logger.WithFields(logrus.Fields{
		"method":   "Airdrop",
		"lamports": 42,
	}).WithError(errors.New("store unavailable"))
	e.Message = "failure committing transaction"

	assert.Equal(
		t,
		`message="failure committing transaction", error="store unavailable", data={"lamports":42,"method":"Airdrop"}`,
		forwardedMessage(e),
	)
}
