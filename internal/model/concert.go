package model

import "time"

// Concert represents a document in the `concerts` collection. Pieces are
// snapshot copies of songs as they looked when the program was built, not
// references into the library, so later library edits never rewrite an old
// program.
//
// A concert's name, date and pieces freeze once IsLocked is set or the
// concert date has passed. The freeze is enforced at the edit boundary
// (session.UpdateConcert); bulk full-replace writes bypass it deliberately.
type Concert struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Pieces   []Song    `json:"pieces"`
	IsLocked bool      `json:"isLocked"`
}

// Editable reports whether the concert still accepts program edits: not
// explicitly locked and not yet performed.
func (c *Concert) Editable() bool {
	return !c.IsLocked && !c.Date.Before(time.Now())
}
