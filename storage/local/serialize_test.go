package local

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	record := &folderRecord{
		Name:   "Inbox",
		Parent: "root",
		Items:  []string{"item-1", "item-2"},
	}
	value, err := serializeObject(record)
	require.NoError(t, err)

	loaded, err := deserializeObject[folderRecord](value)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)
}

func TestSerializeNil(t *testing.T) {
	_, err := serializeObject[folderRecord](nil)
	require.Error(t, err)
}
