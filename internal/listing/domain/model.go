package domain

import (
	"strings"
	"time"
)

type Condition string

const (
	ConditionNew  Condition = "new"
	ConditionUsed Condition = "used"
)

func (c Condition) Valid() bool {
	return c == ConditionNew || c == ConditionUsed
}

type Category string

const (
	CategoryBooks      Category = "books"
	CategoryPhones     Category = "phones"
	CategoryCars       Category = "cars"
	CategorySpareParts Category = "spare-parts"
	CategoryLaptop     Category = "laptop"
	CategoryRandom     Category = "random"
)

// Categories lists every supported category in display order.
var Categories = []Category{
	CategoryBooks,
	CategoryPhones,
	CategoryCars,
	CategorySpareParts,
	CategoryLaptop,
	CategoryRandom,
}

// ParseCategory matches s exactly against the supported categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Image is a remotely stored asset. URL and Handle are always set together;
// a nil *Image means the default asset is shown and nothing is stored remotely.
type Image struct {
	URL    string `json:"url"`
	Handle string `json:"handle"`
}

// NewImage returns nil unless both url and handle are present.
func NewImage(url, handle string) *Image {
	url, handle = strings.TrimSpace(url), strings.TrimSpace(handle)
	if url == "" || handle == "" {
		return nil
	}
	return &Image{URL: url, Handle: handle}
}

func (i *Image) HasHandle() bool {
	return i != nil && i.Handle != ""
}

type Listing struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Condition   Condition `json:"condition"`
	Category    Category  `json:"category,omitempty"`
	Image       *Image    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Fields carries caller-supplied values for create and update. Nil pointers
// mean "not supplied": Create requires Title, Description, Price and Condition,
// Update keeps the stored value. An empty Category clears it.
type Fields struct {
	Title       *string
	Description *string
	Price       *float64
	Condition   *string
	Category    *string
}

// Filter drives FindByFilter. Zero values mean "no restriction".
type Filter struct {
	OwnerID     string
	Text        string
	Category    Category
	NewestFirst bool
}

type Role string

const (
	RoleNormal Role = "normal"
	RoleAdmin  Role = "admin"
)

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
