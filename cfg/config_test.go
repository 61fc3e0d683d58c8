package cfg

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	source := `
accounts:
  work:
    type: imap
    serverURL: mail.example.com:993
    username: user@example.com
    password: secret
    locale: nl-NL
  snapshot:
    type: local
    file: ./snapshot.db
  archive:
    type: maildir
    root: ./archive
`
	config, err := loadConfig(io.NopCloser(strings.NewReader(source)))
	require.NoError(t, err)
	require.Len(t, config.Accounts, 3)

	work := config.Accounts["work"]
	assert.Equal(t, IMAP, work.Type)
	assert.Equal(t, "mail.example.com:993", work.ServerURL)
	assert.Equal(t, "nl-NL", work.Locale)

	assert.Equal(t, LOCAL, config.Accounts["snapshot"].Type)
	assert.Equal(t, MAILDIR, config.Accounts["archive"].Type)
}

func TestLoadInvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		source string
	}{
		{
			"unknown type",
			"accounts:\n  test:\n    type: carrier-pigeon\n",
		},
		{
			"imap missing credentials",
			"accounts:\n  test:\n    type: imap\n    serverURL: mail.example.com:993\n",
		},
		{
			"local missing file",
			"accounts:\n  test:\n    type: local\n",
		},
		{
			"maildir missing root",
			"accounts:\n  test:\n    type: maildir\n",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := loadConfig(io.NopCloser(strings.NewReader(testCase.source)))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile("/file_really_should_not_exist_here.yaml")
	require.Error(t, err)
}
