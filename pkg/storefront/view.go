// Package storefront coordinates a shopper's session: which section is on
// screen, the cart and checkout panels, and the cart itself.
package storefront

import (
	"errors"

	"julianmorley.ca/con-plar/storefront/pkg/catalog"
	"julianmorley.ca/con-plar/storefront/pkg/models"
)

var ErrUnknownSection = errors.New("unknown storefront section")

type Section string

const (
	SectionHome       Section = "home"
	SectionBooks      Section = "books"
	SectionStationery Section = "stationery"
	SectionContact    Section = "contact"
)

// FeaturedCount is how many products of each category the home page previews.
const FeaturedCount = 3

func ParseSection(s string) (Section, error) {
	switch section := Section(s); section {
	case SectionHome, SectionBooks, SectionStationery, SectionContact:
		return section, nil
	}
	return "", ErrUnknownSection
}

// View is the navigation state of one session. CartOpen and CheckoutOpen are
// independent flags; the checkout flow closes the cart when it opens.
type View struct {
	Section      Section `json:"section"`
	CartOpen     bool    `json:"cart_open"`
	CheckoutOpen bool    `json:"checkout_open"`
}

func NewView() View {
	return View{Section: SectionHome}
}

func (v *View) Navigate(section Section) error {
	if _, err := ParseSection(string(section)); err != nil {
		return err
	}
	v.Section = section
	return nil
}

func (v *View) OpenCart()  { v.CartOpen = true }
func (v *View) CloseCart() { v.CartOpen = false }

func (v *View) OpenCheckout() {
	v.CartOpen = false
	v.CheckoutOpen = true
}

func (v *View) CloseCheckout() { v.CheckoutOpen = false }

// ResetAfterOrder closes checkout and returns to the home section.
func (v *View) ResetAfterOrder() {
	v.CheckoutOpen = false
	v.Section = SectionHome
}

// Listing is a titled product list as rendered by one section.
type Listing struct {
	Title    string           `json:"title"`
	Category models.Category  `json:"category"`
	Products []models.Product `json:"products"`
}

// Listings returns what the active section shows for the given catalog: two
// capped previews on home, one filtered list on a category section, nothing
// on contact.
func (v View) Listings(products []models.Product) []Listing {
	switch v.Section {
	case SectionHome:
		return []Listing{
			{Title: "Featured Books", Category: models.CategoryBooks, Products: catalog.Preview(products, models.CategoryBooks, FeaturedCount)},
			{Title: "Featured Stationery", Category: models.CategoryStationery, Products: catalog.Preview(products, models.CategoryStationery, FeaturedCount)},
		}
	case SectionBooks:
		return []Listing{{Title: "Books", Category: models.CategoryBooks, Products: catalog.FilterByCategory(products, models.CategoryBooks)}}
	case SectionStationery:
		return []Listing{{Title: "Stationery", Category: models.CategoryStationery, Products: catalog.FilterByCategory(products, models.CategoryStationery)}}
	default:
		return []Listing{}
	}
}
