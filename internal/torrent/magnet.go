// Package torrent extracts BitTorrent identity from magnet URIs and
// .torrent files.
package torrent

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	bencode "github.com/jackpal/bencode-go"
)

var btihPattern = regexp.MustCompile(`btih:([a-fA-F0-9]+)`)

// InfoHash pulls the lowercase hex info-hash out of a magnet URI. The second
// return is false when the URI carries no btih segment; a record without a
// resolvable hash cannot be considered processed.
func InfoHash(magnet string) (string, bool) {
	m := btihPattern.FindStringSubmatch(magnet)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// FileToMagnet reads a .torrent file, re-encodes its info dictionary to
// compute the swarm's info-hash, and synthesizes a magnet URI carrying the
// torrent's declared name.
func FileToMagnet(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open torrent: %w", err)
	}
	defer f.Close()

	decoded, err := bencode.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode torrent: %w", err)
	}
	meta, ok := decoded.(map[string]any)
	if !ok {
		return "", fmt.Errorf("torrent metadata is not a dictionary")
	}
	info, ok := meta["info"]
	if !ok {
		return "", fmt.Errorf("torrent has no info dictionary")
	}

	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, info); err != nil {
		return "", fmt.Errorf("encode info dictionary: %w", err)
	}
	hash := fmt.Sprintf("%x", sha1.Sum(buf.Bytes()))

	name := "Unknown"
	if infoDict, ok := info.(map[string]any); ok {
		if n, ok := infoDict["name"].(string); ok && n != "" {
			name = n
		}
	}
	return fmt.Sprintf("magnet:?xt=urn:btih:%s&dn=%s", hash, url.QueryEscape(name)), nil
}
