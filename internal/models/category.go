package models

import "time"

// Category groups clients; a category has at most one parent and parents are top level.
type Category struct {
	ID               string    `db:"id" json:"id"`
	CoachID          string    `db:"coach_id" json:"coach_id"`
	Name             string    `db:"name" json:"name"`
	Color            string    `db:"color" json:"color"`
	Icon             string    `db:"icon" json:"icon"`
	ParentCategoryID *string   `db:"parent_category_id" json:"parent_category_id,omitempty"`
	ClientCount      int       `db:"client_count" json:"client_count"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// IsTopLevel reports whether the category has no parent.
func (c Category) IsTopLevel() bool {
	return c.ParentCategoryID == nil || *c.ParentCategoryID == ""
}

// CategoryNode is a top level category with its subcategories.
type CategoryNode struct {
	Category
	Subcategories []Category `json:"subcategories"`
}
