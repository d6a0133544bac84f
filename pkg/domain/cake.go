package domain

// Selection is one answered category on a cake: the chosen option plus the
// option attributes frozen at choice time (the catalog is read-only, so the
// copy is equivalent to a lookup).
type Selection struct {
	CategoryID int64  `json:"category_id"`
	OptionID   int64  `json:"option_id"`
	OptionName string `json:"option_name"`
	Price      int64  `json:"price"`
}

// Cake is a customer's cake, either a draft still being composed or a
// committed cake attached to an order. At most one selection per category.
type Cake struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Selections []Selection `json:"selections,omitempty"`

	Inscription string `json:"inscription,omitempty"`

	// Committed marks the cake as attached to an order. A committed cake is
	// immutable.
	Committed bool `json:"committed"`
}

// Price is the live sum of the chosen options' prices. It is always
// recomputed, never cached.
func (c *Cake) Price() int64 {
	var total int64
	for _, s := range c.Selections {
		total += s.Price
	}
	return total
}

// SelectionFor returns the selection made in the given category, if any.
func (c *Cake) SelectionFor(categoryID int64) (Selection, bool) {
	for _, s := range c.Selections {
		if s.CategoryID == categoryID {
			return s, true
		}
	}
	return Selection{}, false
}
