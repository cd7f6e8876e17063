package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a top-level catalogue entry. Subcategories are embedded and
// have no collection of their own.
type Category struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Image         string             `json:"image" bson:"image"`
	Subcategories []Subcategory      `json:"subcategories" bson:"subcategories"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Subcategory struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`
	Image       string             `json:"image" bson:"image"`
}

// CategoryPatch carries the fields an update replaces. Nil means "leave as is".
type CategoryPatch struct {
	Name        *string
	Description *string
	Image       *string
}

// SubcategoryPatch mirrors CategoryPatch for embedded subcategories.
type SubcategoryPatch struct {
	Name        *string
	Description *string
	Image       *string
}

// Empty reports whether the patch would change nothing.
func (p CategoryPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Image == nil
}

func (p SubcategoryPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Image == nil
}

// FindSubcategory returns the embedded subcategory with the given id.
func (c *Category) FindSubcategory(id primitive.ObjectID) *Subcategory {
	for i := range c.Subcategories {
		if c.Subcategories[i].ID == id {
			return &c.Subcategories[i]
		}
	}
	return nil
}
