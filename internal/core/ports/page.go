package ports

// Page carries pagination and sorting for list queries.
type Page struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// Skip returns the number of records to skip for the requested page.
func (p Page) Skip() int64 {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return int64((page - 1) * p.Limit)
}

// Normalize applies defaults for missing pagination fields.
func (p Page) Normalize(defaultSort string) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Sort == "" {
		p.Sort = defaultSort
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	return p
}
