package jsearch

import "testing"

func TestPostingLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		link   string
		want   string
		usable bool
	}{
		{name: "missing", link: "", usable: false},
		{name: "blank", link: "   ", usable: false},
		{name: "placeholder", link: "#", usable: false},
		{name: "placeholder with spaces", link: " # ", usable: false},
		{name: "valid", link: " https://example.com/apply ", want: "https://example.com/apply", usable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := (&Posting{ApplyLink: tt.link}).Link()
			if ok != tt.usable || got != tt.want {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tt.want, tt.usable, got, ok)
			}
		})
	}
}

func TestPostingDefaults(t *testing.T) {
	p := &Posting{Title: " ", Company: "Acme"}
	if p.TitleOrDefault() != NotAvailable {
		t.Fatalf("expected %q, got %q", NotAvailable, p.TitleOrDefault())
	}
	if p.CompanyOrDefault() != "Acme" {
		t.Fatalf("expected Acme, got %q", p.CompanyOrDefault())
	}
}

func TestPostingsKeepPreservesOrder(t *testing.T) {
	postings := &Postings{Items: []*Posting{
		{JobID: "1", ApplyLink: "https://a"},
		{JobID: "2", ApplyLink: "#"},
		{JobID: "3", ApplyLink: "https://c"},
		{JobID: "4"},
	}}

	dropped := postings.Keep(func(p *Posting) bool {
		_, ok := p.Link()
		return ok
	})

	if postings.Len() != 2 || postings.Items[0].JobID != "1" || postings.Items[1].JobID != "3" {
		t.Fatalf("unexpected kept postings: %+v", postings.Items)
	}
	if len(dropped) != 2 || dropped[0].JobID != "2" || dropped[1].JobID != "4" {
		t.Fatalf("unexpected dropped postings: %+v", dropped)
	}
}
