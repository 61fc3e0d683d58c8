package cmd

import (
	"strings"
	"testing"

	"github.com/creativeprojects/folderfix/cfg"
	"github.com/stretchr/testify/assert"
)

func TestJournalFileIsStablePerAccount(t *testing.T) {
	account := cfg.Account{
		Type:      cfg.IMAP,
		ServerURL: "imap.example.com:993",
		Username:  "user@example.com",
	}
	first := journalFile(account)
	second := journalFile(account)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasSuffix(first, ".journal.json"))

	other := journalFile(cfg.Account{Type: cfg.MAILDIR, Root: "/tmp/mail"})
	assert.NotEqual(t, first, other)
}

func TestSpinnerProgressWithoutSpinner(t *testing.T) {
	progress := newSpinnerProgress(nil)
	progress.Increment()
	progress.Increment()
	assert.Equal(t, 2, progress.batches)
}
