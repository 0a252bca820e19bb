package torrent

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	bencode "github.com/jackpal/bencode-go"
	"github.com/stretchr/testify/require"
)

func TestInfoHashLowercasesHex(t *testing.T) {
	hash, ok := InfoHash("magnet:?xt=urn:btih:0123456789ABCDEF0123456789ABCDEF01234567&dn=x")
	require.True(t, ok)
	require.Equal(t, "0123456789abcdef0123456789abcdef01234567", hash)
}

func TestInfoHashAbsent(t *testing.T) {
	_, ok := InfoHash("https://example.org/not-a-magnet")
	require.False(t, ok)
	_, ok = InfoHash("")
	require.False(t, ok)
}

func writeTorrent(t *testing.T, info map[string]any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bencode.Marshal(&buf, map[string]any{
		"announce": "http://tracker.example.org/announce",
		"info":     info,
	}))
	path := filepath.Join(t.TempDir(), "sample.torrent")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestFileToMagnetComputesInfoHash(t *testing.T) {
	info := map[string]any{
		"name":         "sample-release",
		"piece length": int64(262144),
		"pieces":       "0123456789012345678901234567890123456789",
		"length":       int64(1048576),
	}
	path := writeTorrent(t, info)

	magnet, err := FileToMagnet(path)
	require.NoError(t, err)

	// The expected hash is SHA-1 over the re-encoded info dictionary.
	var infoBuf bytes.Buffer
	require.NoError(t, bencode.Marshal(&infoBuf, info))
	want := fmt.Sprintf("%x", sha1.Sum(infoBuf.Bytes()))

	require.Equal(t, fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=sample-release", want), magnet)

	hash, ok := InfoHash(magnet)
	require.True(t, ok)
	require.Equal(t, want, hash)
}

func TestFileToMagnetRejectsMissingInfo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bencode.Marshal(&buf, map[string]any{"announce": "x"}))
	path := filepath.Join(t.TempDir(), "broken.torrent")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err := FileToMagnet(path)
	require.Error(t, err)
}
