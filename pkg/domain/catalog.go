package domain

// Category is a named set of mutually-exclusive cake options. Categories are
// presented once per cake traversal, ascending by ChoiceOrder (ties broken by
// insertion order). Read-only to the dialogue engine.
type Category struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Mandatory bool   `json:"mandatory"`

	// ChoiceOrder defines the traversal sequence.
	ChoiceOrder int `json:"choice_order"`
}

// Option is one priced choice inside a category. Price is a non-negative
// integer in the smallest currency unit.
type Option struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
}

// CategoryWithOptions pairs a category with its options in display order.
type CategoryWithOptions struct {
	Category
	Options []Option `json:"options"`
}
