package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunRanksKeywords(t *testing.T) {
	in := writeFixture(t, "umsatz.csv",
		"Buchungstag;Verwendungszweck;Betrag\n"+
			"01.02.2024;REWE SAGT DANKE;-12,50\n"+
			"02.02.2024;REWE MARKT;-23,10\n"+
			"03.02.2024;SPOTIFY AB;-9,99\n")

	var out bytes.Buffer
	require.NoError(t, run([]string{"-in", in, "-column", "Verwendungszweck", "-top", "2"}, &out))

	lines := out.String()
	assert.Contains(t, lines, "keyword,count,share")
	assert.Contains(t, lines, "REWE,2,")
}

func TestRunWritesOutputFile(t *testing.T) {
	in := writeFixture(t, "umsatz.csv",
		"Buchungstag;Verwendungszweck;Betrag\n"+
			"01.02.2024;REWE SAGT DANKE;-12,50\n")
	outPath := filepath.Join(t.TempDir(), "ranking.csv")

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-in", in, "-column", "Verwendungszweck", "-out", outPath}, &stdout))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "REWE")
	assert.Empty(t, stdout.String())
}

func TestRunRequiresColumn(t *testing.T) {
	in := writeFixture(t, "umsatz.csv", "a;b\n1;2\n")
	var out bytes.Buffer
	require.Error(t, run([]string{"-in", in}, &out))
}

func TestRunUnknownColumn(t *testing.T) {
	in := writeFixture(t, "umsatz.csv", "a;b\nx;y\n")
	var out bytes.Buffer
	require.Error(t, run([]string{"-in", in, "-column", "nope"}, &out))
}
