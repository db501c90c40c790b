package catalog

import "officehours-backend/internal/model"

// Catalog is the ordered, read-only list of offices.
type Catalog struct {
	offices []model.Office
	byID    map[string]int
}

// New builds a catalog, falling back to Default when offices is empty.
// Callers are expected to have rejected duplicate ids already; a later
// duplicate shadows an earlier one in Lookup.
func New(offices []model.Office) *Catalog {
	if len(offices) == 0 {
		offices = Default()
	}
	c := &Catalog{
		offices: append([]model.Office(nil), offices...),
		byID:    make(map[string]int, len(offices)),
	}
	for i, o := range c.offices {
		c.byID[o.ID] = i
	}
	return c
}

// Default is the built-in catalog.
func Default() []model.Office {
	return []model.Office{
		{ID: "1", Title: "Secretaría Académica", Subtitle: "Abierto de 2:00 pm a 3:00 pm"},
		{ID: "2", Title: "Secretaría Administrativa", Subtitle: "Abierto de 8:00 am a 2:30 pm"},
		{ID: "3", Title: "Biblioteca", Subtitle: "Abierto de 9:00 am a 5:00 pm"},
		{ID: "4", Title: "Oficina de Admisiones", Subtitle: "Abierto de 10:00 am a 4:00 pm"},
	}
}

// Offices returns a copy of the offices in catalog order.
func (c *Catalog) Offices() []model.Office {
	return append([]model.Office(nil), c.offices...)
}

// Lookup finds an office by id.
func (c *Catalog) Lookup(id string) (model.Office, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Office{}, false
	}
	return c.offices[i], true
}

// Len returns the number of offices.
func (c *Catalog) Len() int {
	return len(c.offices)
}
