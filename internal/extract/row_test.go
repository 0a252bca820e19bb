package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/normalize"
)

const rowListingHTML = `
<html><body><table>
<tr class="default">
  <td class="name"><a class="view" href="/torrent/1001">GHI-789 Row Title [subbed]</a></td>
  <td class="links"><a class="dl" href="magnet:?xt=urn:btih:bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb&amp;dn=GHI-789">magnet</a></td>
  <td class="size">1.5GiB</td>
  <td class="date" data-timestamp="1757300316">10 hours ago</td>
</tr>
<tr class="default">
  <td class="name"><a class="view" href="/torrent/1002">random upload without a code</a></td>
  <td class="links"><a class="dl" href="magnet:?xt=urn:btih:cccccccccccccccccccccccccccccccccccccccc">magnet</a></td>
  <td class="size">500M</td>
  <td class="date">2025-09-07 12:30</td>
</tr>
</table></body></html>`

func rowSelectors() config.RowSelectors {
	return config.RowSelectors{
		ItemRow:     "tr.default",
		Title:       "td.name a.view",
		PostURL:     "td.name a.view",
		MagnetLink:  "td.links a.dl",
		FileSize:    "td.size",
		PublishDate: "td.date",
	}
}

func TestRowExtractorExtractPage(t *testing.T) {
	e := &RowExtractor{
		BaseURL:   "https://rows.example",
		Selectors: rowSelectors(),
		Rules:     normalize.TagRules{"subtitled": {"subbed"}},
		Log:       zap.NewNop(),
	}

	items, err := e.ExtractPage(rowListingHTML)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	require.Equal(t, "GHI-789 Row Title [subbed]", first.Title)
	require.Equal(t, "https://rows.example/torrent/1001", first.PostURL)
	require.Equal(t, "GHI-789", first.ItemNumber)
	require.Equal(t, "1.5GiB", first.FileSize)
	require.Equal(t, "magnet:?xt=urn:btih:bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb&dn=GHI-789", first.MagnetLink)
	require.Equal(t, []string{"subtitled"}, first.Tags)
	// data-timestamp wins over the relative text in the cell.
	wantDate := time.Unix(1757300316, 0).Format(normalize.CanonicalDateLayout)
	require.Equal(t, wantDate, first.PublishDate)

	second := items[1]
	// No code anywhere in the title and rows never guess one.
	require.Empty(t, second.ItemNumber)
	require.Equal(t, "2025-09-07 12:30:00", second.PublishDate)
	require.Empty(t, second.Tags)
}

func TestRowExtractorEmptyPage(t *testing.T) {
	e := &RowExtractor{BaseURL: "https://rows.example", Selectors: rowSelectors(), Log: zap.NewNop()}

	items, err := e.ExtractPage(`<html><body><table></table></body></html>`)
	require.NoError(t, err)
	require.Empty(t, items)
}
