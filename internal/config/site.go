package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ThreadListSelectors locate thread links and pagination on a forum listing
// page.
type ThreadListSelectors struct {
	ThreadItem  string `mapstructure:"thread_list_item"`
	ThreadLink  string `mapstructure:"thread_link"`
	MaxPageLink string `mapstructure:"max_page_link"`
	MaxPageSpan string `mapstructure:"max_page_span"`
	EnterButton string `mapstructure:"enter_button"`
}

// ThreadDetailSelectors locate fields on a forum thread detail page.
type ThreadDetailSelectors struct {
	PublishTime      string `mapstructure:"publish_time"`
	MetaKeywords     string `mapstructure:"meta_keywords"`
	MagnetLink       string `mapstructure:"magnet_link"`
	CoverImage       string `mapstructure:"cover_image"`
	ContentContainer string `mapstructure:"post_content_container"`
	SizeKeyword      string `mapstructure:"size_keyword"`
	TypeKeyword      string `mapstructure:"type_keyword"`
	EnterButton      string `mapstructure:"enter_button"`
}

// CardSelectors locate fields within one listing card.
type CardSelectors struct {
	Card      string `mapstructure:"card"`
	TitleLink string `mapstructure:"title_link"`
	Size      string `mapstructure:"size"`
	Date      string `mapstructure:"date"`
	Magnet    string `mapstructure:"magnet"`
	Torrent   string `mapstructure:"torrent"`
	Image     string `mapstructure:"image"`
	ImageAttr string `mapstructure:"image_attr"`
}

// RowSelectors locate fields within one table row of an index listing.
type RowSelectors struct {
	ItemRow     string `mapstructure:"item_row"`
	Title       string `mapstructure:"title"`
	PostURL     string `mapstructure:"post_url"`
	MagnetLink  string `mapstructure:"magnet_link"`
	FileSize    string `mapstructure:"file_size"`
	PublishDate string `mapstructure:"publish_date"`
}

// Selectors bundles the selector maps for every extractor variant a site may
// use. Unused variants stay zero-valued.
type Selectors struct {
	ThreadList   ThreadListSelectors   `mapstructure:"fetch_urls"`
	ThreadDetail ThreadDetailSelectors `mapstructure:"process_details"`
	Card         CardSelectors         `mapstructure:"card_listing"`
	Row          RowSelectors          `mapstructure:"row_listing"`
}

// Site is one resolved scrape-source configuration.
type Site struct {
	Name         string              `mapstructure:"-"`
	BaseURL      string              `mapstructure:"base_url"`
	ForumID      string              `mapstructure:"fid"`
	DatabaseFile string              `mapstructure:"database_file"`
	LogLevel     string              `mapstructure:"log_level"`
	UserAgent    string              `mapstructure:"user_agent"`
	Selectors    Selectors           `mapstructure:"selectors"`
	TagRules     map[string][]string `mapstructure:"tag_rules"`

	RequestDelaySeconds  int    `mapstructure:"request_delay"`
	DownloadDelaySeconds int    `mapstructure:"download_delay"`
	BatchPages           int    `mapstructure:"batch_pages"`
	StopOnConsecutiveDup int    `mapstructure:"stop_on_consecutive_duplicates"`
	PageFailureThreshold int    `mapstructure:"page_failure_threshold"`
	BrowserRestartEvery  int    `mapstructure:"browser_restart_interval"`
	URLDateFormat        string `mapstructure:"url_date_format"`
}

// LoadSite reads configs/<name>.yaml, applies defaults, and validates.
func LoadSite(configDir, name string) (Site, error) {
	if name == "" {
		return Site{}, fmt.Errorf("site name is required")
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(configDir, name+".yaml"))
	setSiteDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Site{}, fmt.Errorf("read site config %q: %w", name, err)
	}

	var site Site
	if err := v.Unmarshal(&site); err != nil {
		return Site{}, fmt.Errorf("unmarshal site config %q: %w", name, err)
	}
	site.Name = name

	if err := site.Validate(); err != nil {
		return Site{}, fmt.Errorf("site config %q: %w", name, err)
	}
	return site, nil
}

func setSiteDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("database_file", "default.db")
	v.SetDefault("user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36")
	v.SetDefault("request_delay", 1)
	v.SetDefault("download_delay", 1)
	v.SetDefault("batch_pages", 10)
	v.SetDefault("stop_on_consecutive_duplicates", 10)
	v.SetDefault("page_failure_threshold", 2)
	v.SetDefault("browser_restart_interval", 25)
	v.SetDefault("url_date_format", "2006-01-02")
}

// Validate enforces required values.
func (s Site) Validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url must be set")
	}
	if s.StopOnConsecutiveDup <= 0 {
		return fmt.Errorf("stop_on_consecutive_duplicates must be > 0")
	}
	if s.BrowserRestartEvery <= 0 {
		return fmt.Errorf("browser_restart_interval must be > 0")
	}
	return nil
}

// DatabasePath resolves the configured database file against the data
// directory. A bare file name lands in dataDir; a relative path is kept
// as-is for older configs that pointed somewhere else.
func (s Site) DatabasePath(dataDir string) string {
	if filepath.Dir(s.DatabaseFile) != "." {
		return s.DatabaseFile
	}
	return filepath.Join(dataDir, s.DatabaseFile)
}

// RequestDelay returns the inter-page pause.
func (s Site) RequestDelay() time.Duration {
	return time.Duration(s.RequestDelaySeconds) * time.Second
}

// DownloadDelay returns the pause before .torrent downloads.
func (s Site) DownloadDelay() time.Duration {
	return time.Duration(s.DownloadDelaySeconds) * time.Second
}
