package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMailerLogsWithoutSMTPHost(t *testing.T) {
	m := &Mailer{From: "no-reply@magazin.local"}
	assert.NoError(t, m.Send("user@example.com", "subject", "body"))
}

func TestMailerCodeHelpers(t *testing.T) {
	m := &Mailer{}
	assert.NoError(t, m.SendResetCode("user@example.com", "123456"))
	assert.NoError(t, m.SendDeleteCode("user@example.com", "654321"))
}
