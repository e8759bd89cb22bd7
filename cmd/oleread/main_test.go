package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oleread "github.com/asalih/go-oleread"
	"github.com/asalih/go-oleread/internal/cfbtest"
)

func fixture(t *testing.T, extra ...cfbtest.Node) string {
	t.Helper()
	nodes := []cfbtest.Node{
		{Name: "Workbook", Data: []byte("HELLOWORLD")},
		{Name: "Macros", Children: []cfbtest.Node{
			{Name: "Module1", Data: []byte("Sub Main()")},
		}},
	}
	data, _ := cfbtest.Container{Nodes: append(nodes, extra...)}.Build()

	path := filepath.Join(t.TempDir(), "book.xls")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLs(t *testing.T) {
	path := fixture(t)

	out, err := execute(t, "ls", path)
	require.NoError(t, err)
	assert.Contains(t, out, "INDEX")
	assert.Contains(t, out, `"Root Entry"`)
	assert.Contains(t, out, `"Workbook"`)
	assert.Contains(t, out, `"Module1"`)

	out, err = execute(t, "ls", "--tree", "--strict", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"/Macros/Module1"`)
}

func TestCat(t *testing.T) {
	path := fixture(t)

	out, err := execute(t, "cat", path)
	require.NoError(t, err)
	assert.Len(t, out, 64)
	assert.Equal(t, "HELLOWORLD", out[:10])

	out, err = execute(t, "cat", "--trim", path, "/Macros/Module1")
	require.NoError(t, err)
	assert.Equal(t, "Sub Main()", out)

	target := filepath.Join(t.TempDir(), "workbook.bin")
	_, err = execute(t, "cat", "--trim", "-o", target, path)
	require.NoError(t, err)
	written, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("HELLOWORLD"), written)
}

func TestCatErrors(t *testing.T) {
	path := fixture(t)

	_, err := execute(t, "cat", path, "/Nothing")
	assert.ErrorIs(t, err, oleread.ErrorNotFound)

	_, err = execute(t, "cat", path, "/Macros")
	assert.ErrorIs(t, err, oleread.ErrorNotFound)

	_, err = execute(t, "cat", filepath.Join(t.TempDir(), "missing.xls"))
	assert.ErrorIs(t, err, oleread.ErrorNotReadable)
}

func TestPropsMissingStream(t *testing.T) {
	path := fixture(t)

	_, err := execute(t, "props", path)
	assert.ErrorIs(t, err, oleread.ErrorNotFound)
}

func TestVerifyUnreadable(t *testing.T) {
	_, err := execute(t, "verify", filepath.Join(t.TempDir(), "missing.xls"))
	assert.ErrorIs(t, err, oleread.ErrorNotReadable)
}

func TestStreamArg(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "Workbook", want: "Workbook"},
		{in: `\x05SummaryInformation`, want: "\x05SummaryInformation"},
		{in: `\005DocumentSummaryInformation`, want: "\x05DocumentSummaryInformation"},
		{in: `bad\q`, want: `bad\q`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, streamArg(tt.in))
		})
	}
}

// encodeSummaryInformation encodes a property set stream holding one VT_I4
// property.
func encodeSummaryInformation(id uint32, value int32) []byte {
	fmtid := []byte{0xe0, 0x85, 0x9f, 0xf2, 0xf9, 0x4f, 0x68, 0x10, 0xab, 0x91, 0x08, 0x00, 0x2b, 0x27, 0xb3, 0xd9}

	buf := make([]byte, 48+24)
	binary.LittleEndian.PutUint16(buf[0:], 0xfffe)
	binary.LittleEndian.PutUint16(buf[2:], 0)
	binary.LittleEndian.PutUint32(buf[4:], 0x00020006)
	binary.LittleEndian.PutUint32(buf[24:], 1)
	copy(buf[28:], fmtid)
	binary.LittleEndian.PutUint32(buf[44:], 48)

	section := buf[48:]
	binary.LittleEndian.PutUint32(section[0:], 24)
	binary.LittleEndian.PutUint32(section[4:], 1)
	binary.LittleEndian.PutUint32(section[8:], id)
	binary.LittleEndian.PutUint32(section[12:], 16)
	binary.LittleEndian.PutUint16(section[16:], 0x0003)
	binary.LittleEndian.PutUint32(section[20:], uint32(value))
	return buf
}

func TestVerify(t *testing.T) {
	path := fixture(t,
		cfbtest.Node{Name: "Überblick", Data: pattern(5000)},
		cfbtest.Node{Name: "\x05SummaryInformation", Data: encodeSummaryInformation(14, 42)},
	)

	out, err := execute(t, "verify", path)
	require.NoError(t, err, out)
	assert.Contains(t, out, "4 streams checked, 0 mismatches")
}

func TestVerifyPlainNames(t *testing.T) {
	out, err := execute(t, "verify", "--strict", fixture(t))
	require.NoError(t, err, out)
	assert.Contains(t, out, "2 streams checked, 0 mismatches")
}

func TestProps(t *testing.T) {
	path := fixture(t, cfbtest.Node{Name: "\x05SummaryInformation", Data: encodeSummaryInformation(14, 42)})

	out, err := execute(t, "props", path)
	require.NoError(t, err)
	assert.Contains(t, out, "42")

	out, err = execute(t, "props", path, `\x05SummaryInformation`)
	require.NoError(t, err)
	assert.Contains(t, out, "42")
}

func TestLsNonASCII(t *testing.T) {
	path := fixture(t, cfbtest.Node{Name: "Лист", Data: []byte("x")})

	out, err := execute(t, "ls", "--tree", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"/Лист"`)

	out, err = execute(t, "cat", "--trim", path, "/лист")
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func pattern(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 251)
	}
	return out
}
