package lineitem

import "strings"

// Editor keeps the rows of a product form and the running total shown
// while the user types. It never holds fewer than one row.
type Editor struct {
	rows  []Item
	total float64
}

// NewEditor starts from items, or from a single zeroed row when items is empty.
func NewEditor(items []Item) *Editor {
	e := &Editor{}
	if len(items) == 0 {
		e.rows = []Item{{}}
	} else {
		e.rows, e.total = Recompute(items)
	}
	return e
}

func (e *Editor) Len() int {
	return len(e.rows)
}

// Items returns a copy of the current rows.
func (e *Editor) Items() []Item {
	out := make([]Item, len(e.rows))
	copy(out, e.rows)
	return out
}

func (e *Editor) Total() float64 {
	return e.total
}

func (e *Editor) Row(i int) (Item, error) {
	if i < 0 || i >= len(e.rows) {
		return Item{}, ErrRowOutOfRange
	}
	return e.rows[i], nil
}

func (e *Editor) SetProduct(i int, product string) error {
	return e.update(i, func(item *Item) { item.Product = product })
}

func (e *Editor) SetCategory(i int, category string) error {
	return e.update(i, func(item *Item) { item.Category = category })
}

func (e *Editor) SetPartNumber(i int, partNumber string) error {
	return e.update(i, func(item *Item) {
		if strings.TrimSpace(partNumber) == "" {
			item.PartNumber = nil
			return
		}
		item.PartNumber = &partNumber
	})
}

// SetQuantity parses text and recomputes the row amount and total.
func (e *Editor) SetQuantity(i int, text string) error {
	return e.update(i, func(item *Item) { item.Quantity = Parse(text) })
}

// SetPrice parses text and recomputes the row amount and total.
func (e *Editor) SetPrice(i int, text string) error {
	return e.update(i, func(item *Item) { item.Price = Parse(text) })
}

// Append adds a zeroed row at the end.
func (e *Editor) Append() {
	e.rows = append(e.rows, Item{})
}

// Remove deletes row i unless it is the only one left.
func (e *Editor) Remove(i int) error {
	if i < 0 || i >= len(e.rows) {
		return ErrRowOutOfRange
	}
	if len(e.rows) == 1 {
		return ErrLastRow
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
	e.recalc()
	return nil
}

// Validate applies the submit-time row check.
func (e *Editor) Validate() error {
	return Validate(e.rows)
}

func (e *Editor) update(i int, fn func(*Item)) error {
	if i < 0 || i >= len(e.rows) {
		return ErrRowOutOfRange
	}
	fn(&e.rows[i])
	e.rows[i].Amount = Amount(e.rows[i].Quantity, e.rows[i].Price)
	e.recalc()
	return nil
}

func (e *Editor) recalc() {
	amounts := make([]float64, len(e.rows))
	for i, row := range e.rows {
		amounts[i] = row.Amount
	}
	e.total = Sum(amounts...)
}
