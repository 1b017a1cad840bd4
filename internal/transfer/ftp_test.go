package transfer

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCRLF(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"a", "a\r\n"},
		{"a\nb", "a\r\nb\r\n"},
		{"a\r\nb\r\n", "a\r\nb\r\n"},
		{"a\n\nb\n", "a\r\n\r\nb\r\n"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(toCRLF([]byte(tt.in))), "input %q", tt.in)
	}
}

func TestDownloadViaLeavesNothingBehind(t *testing.T) {
	scratch := t.TempDir()

	data, err := downloadVia(scratch, "/in/report.txt", func(w io.Writer) error {
		_, err := w.Write([]byte("payload"))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = downloadVia(scratch, "/in/report.txt", func(w io.Writer) error {
		return os.ErrDeadlineExceeded
	})
	assert.Error(t, err)

	left, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, left)
}
