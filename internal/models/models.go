package models

type QueryKind string

const (
	QueryPrimary  QueryKind = "primary"
	QueryFallback QueryKind = "fallback"
)

type Employer struct {
	Name string `json:"name"`
}

type Query struct {
	Text string    `json:"text"`
	Kind QueryKind `json:"kind"`
}

// ReportEntry is the list of fresh links found for one employer in a run.
type ReportEntry struct {
	Employer string   `json:"employer"`
	Links    []string `json:"links"`
}

type EmployerFailure struct {
	Employer string `json:"employer"`
	Error    string `json:"error"`
}

// DiscoveryReport maps employers to their fresh links. Entries keep the
// order employers were first processed and hold one entry per name.
type DiscoveryReport struct {
	Entries  []ReportEntry     `json:"entries"`
	Failures []EmployerFailure `json:"failures,omitempty"`
}

func NewDiscoveryReport() *DiscoveryReport {
	return &DiscoveryReport{Entries: make([]ReportEntry, 0)}
}

// Add records links for employer. A name listed twice in the roster extends
// its first entry instead of creating a second heading.
func (r *DiscoveryReport) Add(employer string, links []string) {
	for i := range r.Entries {
		if r.Entries[i].Employer == employer {
			r.Entries[i].Links = append(r.Entries[i].Links, links...)
			return
		}
	}
	r.Entries = append(r.Entries, ReportEntry{Employer: employer, Links: links})
}

func (r *DiscoveryReport) AddFailure(employer string, err error) {
	r.Failures = append(r.Failures, EmployerFailure{Employer: employer, Error: err.Error()})
}

// Links returns the links recorded for employer, or nil.
func (r *DiscoveryReport) Links(employer string) []string {
	for _, e := range r.Entries {
		if e.Employer == employer {
			return e.Links
		}
	}
	return nil
}

func (r *DiscoveryReport) Empty() bool {
	return len(r.Entries) == 0
}

// TotalLinks counts links across all entries
func (r *DiscoveryReport) TotalLinks() int {
	n := 0
	for _, e := range r.Entries {
		n += len(e.Links)
	}
	return n
}
