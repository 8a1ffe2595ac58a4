package jsearch

import "strings"

const (
	// NotAvailable replaces a missing title or employer name.
	NotAvailable = "N/A"
	// placeholderLink is what JSearch puts into job_apply_link when it has nothing.
	placeholderLink = "#"
)

type Postings struct {
	Items []*Posting
}

type Posting struct {
	JobID          string `json:"job_id,omitempty"`
	Title          string `json:"job_title,omitempty"`
	Company        string `json:"employer_name,omitempty"`
	Publisher      string `json:"job_publisher,omitempty"`
	EmploymentType string `json:"job_employment_type,omitempty"`
	Description    string `json:"job_description,omitempty"`
	ApplyLink      string `json:"job_apply_link,omitempty"`
	City           string `json:"job_city,omitempty"`
	Country        string `json:"job_country,omitempty"`
	IsRemote       bool   `json:"job_is_remote,omitempty"`
	PostedAt       string `json:"job_posted_at_datetime_utc,omitempty"`
}

// Link returns the trimmed application link and whether it can be used.
func (p *Posting) Link() (string, bool) {
	link := strings.TrimSpace(p.ApplyLink)
	if link == "" || link == placeholderLink {
		return "", false
	}
	return link, true
}

// TitleOrDefault returns the job title or NotAvailable.
func (p *Posting) TitleOrDefault() string {
	return orDefault(p.Title)
}

// CompanyOrDefault returns the employer name or NotAvailable.
func (p *Posting) CompanyOrDefault() string {
	return orDefault(p.Company)
}

func orDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}

func (p *Postings) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

// Keep leaves only postings accepted by keep, preserving order, and returns the dropped ones.
func (p *Postings) Keep(keep func(*Posting) bool) []*Posting {
	var dropped []*Posting
	kept := p.Items[:0]
	for _, posting := range p.Items {
		if keep(posting) {
			kept = append(kept, posting)
			continue
		}
		dropped = append(dropped, posting)
	}

	// clear the tail so dropped postings can be collected
	for i := len(kept); i < len(p.Items); i++ {
		p.Items[i] = nil
	}
	p.Items = kept

	return dropped
}
