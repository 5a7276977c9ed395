package model

// TaxonomyID is the fixed document id of the singleton taxonomy record in
// the `taxonomy` collection.
const TaxonomyID = "taxonomy"

// Taxonomy holds the two admin-editable category lists used to classify
// music. Uniqueness (case-insensitive for types) is enforced by the admin
// handlers at write time, not by the storage layer.
type Taxonomy struct {
	ID       string   `json:"id"`
	Types    []string `json:"types"`
	Subtypes []string `json:"subtypes"`
}
