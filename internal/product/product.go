package product

import "errors"

var (
	ErrNotFound = errors.New("product not found")
	ErrNotSaved = errors.New("product not saved")
)

type Product struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"`
	Likes int64  `json:"likes"`
}

// Draft is the payload of a create call.
type Draft struct {
	Title string `json:"title" validate:"required"`
	Image string `json:"image" validate:"required"`
}

// Patch carries the fields of a partial update. Nil fields are left untouched.
type Patch struct {
	Title *string `json:"title,omitempty"`
	Image *string `json:"image,omitempty"`
}

func (p Patch) Apply(to Product) Product {
	if p.Title != nil {
		to.Title = *p.Title
	}
	if p.Image != nil {
		to.Image = *p.Image
	}
	return to
}

func NextID(products []Product) int64 {
	var max int64
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

func Index(products []Product, id int64) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func Clone(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}
