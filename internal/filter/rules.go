package filter

// Rules are the literal tables behind each filter stage. Empty lists fall
// back to the defaults below.
type Rules struct {
	// Host patterns for stage 1; a trailing "." makes the entry a host prefix.
	NoiseHosts    []string `yaml:"noise_hosts"`
	DocExtensions []string `yaml:"doc_extensions"`
	AllowMarkers  []string `yaml:"allow_markers"`
	GeoExclusions []string `yaml:"geo_exclusions"`
	MinWordLength int      `yaml:"min_word_length"`
}

var DefaultNoiseHosts = []string{
	"accounts.google.",
	"maps.google.",
	"support.google.",
	"policies.google.",
	"translate.google.",
	"books.google.",
	"www.google.",
	"webcache.googleusercontent.com",
	"youtube.com",
	"youtu.be",
	"vimeo.com",
}

var DefaultDocExtensions = []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xls", ".xlsx"}

var DefaultAllowMarkers = []string{
	"greenhouse.io",
	"myworkdayjobs.com",
	"lever.co",
	"smartrecruiters.com",
	"ashbyhq.com",
	"icims.com",
	"jobvite.com",
	"workable.com",
	"bamboohr.com",
	"taleo.net",
	"careers.",
	"jobs.",
	"boards.",
	"apply.",
	"workwithus.",
	".jobs",
}

var DefaultGeoExclusions = []string{"/uk/", "/ca/", "/in/", "/au/", "/eu/", "/sg/", "/de/", "/fr/", "/ph/", "/mx/"}

// DefaultMinWordLength: employer words must be longer than 2 runes to count.
const DefaultMinWordLength = 3

func (r Rules) withDefaults() Rules {
	if len(r.NoiseHosts) == 0 {
		r.NoiseHosts = DefaultNoiseHosts
	}
	if len(r.DocExtensions) == 0 {
		r.DocExtensions = DefaultDocExtensions
	}
	if len(r.AllowMarkers) == 0 {
		r.AllowMarkers = DefaultAllowMarkers
	}
	if len(r.GeoExclusions) == 0 {
		r.GeoExclusions = DefaultGeoExclusions
	}
	if r.MinWordLength <= 0 {
		r.MinWordLength = DefaultMinWordLength
	}
	return r
}
