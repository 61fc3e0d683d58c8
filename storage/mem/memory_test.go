package mem_test

import (
	"testing"

	"github.com/creativeprojects/folderfix/storage/mem"
	"github.com/creativeprojects/folderfix/storage/test"
	"github.com/stretchr/testify/require"
)

func TestMemoryDirectory(t *testing.T) {
	dir := mem.New()

	defer dir.Close()

	err := test.PrepareDirectory(dir)
	require.NoError(t, err)

	test.RunTestsOnDirectory(t, dir)
}
