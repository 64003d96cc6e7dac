package config

// SourcesConfig groups the per-origin adapter configurations.
type SourcesConfig struct {
	RealDiscount  RealDiscountConfig  `json:"real_discount,omitempty" yaml:"real_discount,omitempty"`
	Discudemy     DiscudemyConfig     `json:"discudemy,omitempty" yaml:"discudemy,omitempty"`
	CourseVania   CourseVaniaConfig   `json:"coursevania,omitempty" yaml:"coursevania,omitempty"`
	UdemyFreebies UdemyFreebiesConfig `json:"udemyfreebies,omitempty" yaml:"udemyfreebies,omitempty"`
}

// RealDiscountConfig configures the JSON API adapter.
type RealDiscountConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Referer  string `json:"referer,omitempty" yaml:"referer,omitempty" validate:"omitempty,url"`
	Pages    int    `json:"pages,omitempty" yaml:"pages,omitempty" validate:"omitempty,min=1,max=10"`
	PageSize int    `json:"page_size,omitempty" yaml:"page_size,omitempty" validate:"omitempty,min=1,max=500"`
}

// DiscudemyConfig configures the two-step list-to-detail adapter.
type DiscudemyConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	BaseURL       string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	ListingPages  int    `json:"listing_pages,omitempty" yaml:"listing_pages,omitempty" validate:"omitempty,min=1,max=10"`
	DetailDelayMs int    `json:"detail_delay_ms,omitempty" yaml:"detail_delay_ms,omitempty" validate:"omitempty,min=0"`
	PageDelayMs   int    `json:"page_delay_ms,omitempty" yaml:"page_delay_ms,omitempty" validate:"omitempty,min=0"`
}

// CourseVaniaConfig configures the AJAX token adapter.
type CourseVaniaConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	BaseURL       string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	MaxCourses    int    `json:"max_courses,omitempty" yaml:"max_courses,omitempty" validate:"omitempty,min=1,max=100"`
	DetailDelayMs int    `json:"detail_delay_ms,omitempty" yaml:"detail_delay_ms,omitempty" validate:"omitempty,min=0"`
}

// UdemyFreebiesConfig configures the single-page HTML adapter.
type UdemyFreebiesConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	BaseURL  string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	MaxLinks int    `json:"max_links,omitempty" yaml:"max_links,omitempty" validate:"omitempty,min=1,max=200"`
}

// NewDefaultSourcesConfig creates a SourcesConfig with all adapters enabled
// and their production endpoints configured.
func NewDefaultSourcesConfig() SourcesConfig {
	return SourcesConfig{
		RealDiscount: RealDiscountConfig{
			Enabled:  true,
			BaseURL:  DefaultRealDiscountBaseURL,
			Referer:  DefaultRealDiscountReferer,
			Pages:    DefaultRealDiscountPages,
			PageSize: DefaultRealDiscountPageSize,
		},
		Discudemy: DiscudemyConfig{
			Enabled:       true,
			BaseURL:       DefaultDiscudemyBaseURL,
			ListingPages:  DefaultDiscudemyListingPages,
			DetailDelayMs: DefaultDiscudemyDetailDelayMs,
			PageDelayMs:   DefaultDiscudemyPageDelayMs,
		},
		CourseVania: CourseVaniaConfig{
			Enabled:       true,
			BaseURL:       DefaultCourseVaniaBaseURL,
			MaxCourses:    DefaultCourseVaniaMaxCourses,
			DetailDelayMs: DefaultCourseVaniaDetailDelayMs,
		},
		UdemyFreebies: UdemyFreebiesConfig{
			Enabled:  true,
			BaseURL:  DefaultUdemyFreebiesBaseURL,
			MaxLinks: DefaultUdemyFreebiesMaxLinks,
		},
	}
}
