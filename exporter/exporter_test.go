package exporter

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegepoly/vegepoly/vegmodel"
)

func samplePoints() []vegmodel.PointRecord {
	return []vegmodel.PointRecord{
		{X: 1.5, Y: 2.25, TypeValue: 10},
		{X: 100, Y: 200, TypeValue: 20},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, samplePoints()))

	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 4) // header, two records, trailing newline

	assert.True(t, strings.HasPrefix(lines[0], "X\tY\tNom\t"))

	assert.True(t, strings.HasPrefix(lines[1], "       1.5\t       2.25\t"))
	assert.True(t, strings.HasPrefix(lines[2], "       100\t       200\t"))
	assert.Contains(t, lines[1], "\t20\t")
	assert.Contains(t, lines[1], "\t20096\t")
	assert.True(t, strings.HasSuffix(lines[1], "\t0\t10\t"))
	assert.True(t, strings.HasSuffix(lines[2], "\t0\t20\t"))

	// Every record must carry the full legacy column set.
	headerTabs := strings.Count(lines[0], "\t")
	for _, line := range lines[1:3] {
		assert.Equal(t, headerTabs, strings.Count(line, "\t"))
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	// Header only.
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.True(t, strings.HasPrefix(buf.String(), "X\tY\t"))
}

func TestSavePlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt")
	require.NoError(t, Save(path, samplePoints()))

	var want bytes.Buffer
	require.NoError(t, Write(&want, samplePoints()))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), got)
}

func TestSaveZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.txt.zst")
	require.NoError(t, Save(path, samplePoints()))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	dec, err := zstd.NewReader(file)
	require.NoError(t, err)
	defer dec.Close()

	got, err := io.ReadAll(dec)
	require.NoError(t, err)

	var want bytes.Buffer
	require.NoError(t, Write(&want, samplePoints()))
	assert.Equal(t, want.Bytes(), got)
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2026, time.August, 29, 14, 3, 27, 0, time.UTC)
	assert.Equal(t, "Export 29-08-2026 14h03-27.txt", DefaultFilename(now))
}
