package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MisterMushn/bilanzieren/pkg/contracts/domain"
)

func TestSniffDialectGerman(t *testing.T) {
	dialect, err := SniffDialect([]byte("A;B\n1,23;4,56\n7,89;0,12"))
	require.NoError(t, err)
	assert.Equal(t, domain.DialectGerman, dialect)
}

func TestSniffDialectDefault(t *testing.T) {
	dialect, err := SniffDialect([]byte("A,B\n1.5,2.5\n3.0,4.0"))
	require.NoError(t, err)
	assert.Equal(t, domain.DialectDefault, dialect)
}

func TestSniffDialectSemicolonOnly(t *testing.T) {
	dialect, err := SniffDialect([]byte("Datum;Betrag\n2024-01-01;12\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.DialectGerman, dialect)
}

func TestSniffDialectUndetectable(t *testing.T) {
	_, err := SniffDialect([]byte("just a single column\nwith no separators\n"))
	require.ErrorIs(t, err, ErrDelimiterNotDetected)
	assert.Contains(t, err.Error(), "can't detect delimiter")
}

func TestSniffDialectEmptyInput(t *testing.T) {
	_, err := SniffDialect(nil)
	require.ErrorIs(t, err, ErrDelimiterNotDetected)
}

func TestSniffDialectBoundedPrefix(t *testing.T) {
	// Semicolons appearing only beyond the 4096-byte window must not
	// influence the decision.
	head := "A,B\n" + strings.Repeat("1.5,2.5\n", 600)
	require.Greater(t, len(head), sniffLimit)
	data := head + "x;y;z\n"

	dialect, err := SniffDialect([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, domain.DialectDefault, dialect)
}

func TestSniffDialectToleratesInvalidBytes(t *testing.T) {
	data := append([]byte("A;B\n"), 0xFF, 0xFE, ';', 'x', '\n')
	dialect, err := SniffDialect(data)
	require.NoError(t, err)
	assert.Equal(t, domain.DialectGerman, dialect)
}

func TestSniffDialectCRLF(t *testing.T) {
	dialect, err := SniffDialect([]byte("A;B\r\n1,0;2,0\r\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.DialectGerman, dialect)
}
