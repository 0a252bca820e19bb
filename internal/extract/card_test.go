package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/normalize"
)

const cardListingHTML = `
<html><body>
<div class="card mb-3">
  <img class="image lazy" data-src="/covers/abc-123.jpg" src="/static/blank.gif"/>
  <h5 class="title is-4 is-spaced">
    <a href="/v/abc-123">ABC-123 Glorious Title [subbed]</a>
    <span class="is-size-6">4.5 GiB</span>
  </h5>
  <p class="subtitle is-6"><a href="#">2025-09-08</a></p>
  <a title="Download Magnet" href="magnet:?xt=urn:btih:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa&amp;dn=ABC-123">magnet</a>
</div>
<div class="card mb-3">
  <h5 class="title is-4 is-spaced">
    <a href="/v/def-456">DEF-456 Second Title</a>
    <span class="is-size-6">500M</span>
  </h5>
  <p class="subtitle is-6"><a href="#" title="2025-09-07"></a></p>
  <a title="Download .torrent" href="/torrents/def-456.torrent">torrent</a>
</div>
</body></html>`

func TestCardExtractorExtractPage(t *testing.T) {
	e := &CardExtractor{
		BaseURL: "https://cards.example",
		Rules:   normalize.TagRules{"subtitled": {"subbed"}},
		Log:     zap.NewNop(),
	}

	items, err := e.ExtractPage(cardListingHTML)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	require.Equal(t, "ABC-123 Glorious Title [subbed]", first.Title)
	require.Equal(t, "https://cards.example/v/abc-123", first.PostURL)
	require.Equal(t, "ABC-123", first.ItemNumber)
	require.Equal(t, "4.5 GiB", first.FileSize)
	require.Equal(t, "2025-09-08 00:00:00", first.PublishDate)
	require.Equal(t, "magnet:?xt=urn:btih:aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa&dn=ABC-123", first.MagnetLink)
	require.Empty(t, first.TorrentURL)
	require.Equal(t, "https://cards.example/covers/abc-123.jpg", first.CoverURL)
	require.Equal(t, []string{"subtitled"}, first.Tags)

	second := items[1]
	require.Equal(t, "DEF-456", second.ItemNumber)
	require.Empty(t, second.MagnetLink)
	require.Equal(t, "https://cards.example/torrents/def-456.torrent", second.TorrentURL)
	// Date cell is empty, so the title attribute supplies it.
	require.Equal(t, "2025-09-07 00:00:00", second.PublishDate)
	require.Empty(t, second.Tags)
}

func TestCardExtractorEmptyPage(t *testing.T) {
	e := &CardExtractor{BaseURL: "https://cards.example", Log: zap.NewNop()}

	items, err := e.ExtractPage(`<html><body><p>nothing here</p></body></html>`)
	require.NoError(t, err)
	require.Empty(t, items)
}
