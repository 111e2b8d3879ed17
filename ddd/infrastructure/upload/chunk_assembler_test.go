package upload_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"separation-service/ddd/infrastructure/upload"
)

func TestAppendChunk_AssemblesInOrder(t *testing.T) {
	dir := t.TempDir()
	assembler := upload.NewChunkAssembler(dir)

	chunks := []string{"hello ", "chunked ", "world"}
	for i, c := range chunks {
		status, err := assembler.AppendChunk("song.mp3", i+1, len(chunks), strings.NewReader(c))
		require.NoError(t, err)
		if i == len(chunks)-1 {
			assert.Equal(t, upload.AssemblyComplete, status)
		} else {
			assert.Equal(t, upload.AssemblyPartial, status)
		}
	}

	// 装配结果是分片按序拼接
	got, err := os.ReadFile(filepath.Join(dir, "song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "hello chunked world", string(got))
}

func TestAppendChunk_SingleChunkCompletesImmediately(t *testing.T) {
	assembler := upload.NewChunkAssembler(t.TempDir())

	status, err := assembler.AppendChunk("one.mp3", 1, 1, strings.NewReader("whole file"))
	require.NoError(t, err)
	assert.Equal(t, upload.AssemblyComplete, status)
}

func TestAppendChunk_IndexValidation(t *testing.T) {
	assembler := upload.NewChunkAssembler(t.TempDir())

	cases := []struct {
		name         string
		index, total int
	}{
		{"zero index", 0, 3},
		{"negative index", -1, 3},
		{"index beyond total", 4, 3},
		{"zero total", 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := assembler.AppendChunk("bad.mp3", tc.index, tc.total, strings.NewReader("x"))
			assert.Error(t, err)
		})
	}
}

func TestAppendChunk_CreatesUploadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	assembler := upload.NewChunkAssembler(dir)

	_, err := assembler.AppendChunk("a.mp3", 1, 1, strings.NewReader("x"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "a.mp3"))
	assert.NoError(t, err)
}
