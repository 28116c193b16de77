package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("  Drilling  \n"))

	got, err := GetSimpleText(r, "Enter plod name", &out)
	require.NoError(t, err)
	require.Equal(t, "Drilling", got)
	require.Contains(t, out.String(), "Enter plod name")
}

func TestGetSimpleText_EOFWithPartialLine(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("partial"))

	got, err := GetSimpleText(r, "prompt", &out)
	require.NoError(t, err)
	require.Equal(t, "partial", got)
}

func TestGetSimpleText_EOFWithNoInput(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(""))

	_, err := GetSimpleText(r, "prompt", &out)
	require.Error(t, err)
}

func TestGetPIN_UsesTerminalSeam(t *testing.T) {
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(fd int) ([]byte, error) { return []byte("4812"), nil }

	var out bytes.Buffer
	pin, err := GetPIN(&out)
	require.NoError(t, err)
	require.Equal(t, "4812", pin)
	require.Contains(t, out.String(), "Enter PIN")
}

func TestGetList(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("p1, p2 ,,p3\n"))

	got, err := GetList(r, "Allowed plod ids", &out)
	require.NoError(t, err)
	require.Equal(t, []string{"p1", "p2", "p3"}, got)
}

func TestGetList_Empty(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("\n"))

	got, err := GetList(r, "Allowed plod ids", &out)
	require.NoError(t, err)
	require.Nil(t, got)
}
