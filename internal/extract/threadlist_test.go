package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mediaharvest/mediaharvest/internal/config"
)

var threadListSelectors = config.ThreadListSelectors{
	ThreadItem:  "tbody.thread",
	ThreadLink:  "a.xst",
	MaxPageLink: "a.last",
	MaxPageSpan: "div.pg label span",
}

const threadListHTML = `
<html><body>
<tbody class="thread"><tr><td><a class="xst" href="/thread-1001-1-1.html">First</a></td></tr></tbody>
<tbody class="thread"><tr><td><a class="xst" href="/thread-1002-1-1.html">Second</a></td></tr></tbody>
<tbody class="thread"><tr><td><a class="xst" href="/thread-1001-1-1.html">First again</a></td></tr></tbody>
<tbody class="thread"><tr><td><span>no link here</span></td></tr></tbody>
</body></html>`

func TestThreadURLsDeduplicatesAndJoins(t *testing.T) {
	urls, err := ThreadURLs(threadListHTML, "https://forum.example.org/", threadListSelectors)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{
		"https://forum.example.org/thread-1001-1-1.html",
		"https://forum.example.org/thread-1002-1-1.html",
	}, urls)
}

func TestMaxPageFromLastPageLink(t *testing.T) {
	html := `<div class="pg"><a class="last" href="forum-141-23.html">... 23</a></div>`
	require.Equal(t, 23, MaxPage(html, threadListSelectors))
}

func TestMaxPageFromPaginationSpan(t *testing.T) {
	html := `<div class="pg"><label><span title="共 57 页">/ 57 页</span></label></div>`
	require.Equal(t, 57, MaxPage(html, threadListSelectors))
}

func TestMaxPageDefaultsToOne(t *testing.T) {
	require.Equal(t, 1, MaxPage("<html><body>no pagination</body></html>", threadListSelectors))
	require.Equal(t, 1, MaxPage("", threadListSelectors))
}
