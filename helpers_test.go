package oleread

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/asalih/go-oleread/internal/cfbtest"
)

func workbookContainer(workbook []byte, extra ...cfbtest.Node) cfbtest.Container {
	nodes := append([]cfbtest.Node{{Name: "Workbook", Data: workbook}}, extra...)
	return cfbtest.Container{Nodes: nodes}
}

func mustOpen(t *testing.T, data []byte, validation Validation) *File {
	t.Helper()
	f, err := OpenBytes("test.xls", data, validation)
	require.NoError(t, err)
	return f
}

func pattern(n int, seed byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = seed + byte(i%251)
	}
	return out
}

func hasPrefix(data, prefix []byte) bool {
	return bytes.HasPrefix(data, prefix)
}
