package models

import (
	"encoding/json"
	"strconv"
)

// formatID renders numeric identifiers; zero means "not assigned yet".
func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Product is a sellable item.
type Product struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Price        float64    `json:"price"`
	CategoryID   int64      `json:"categoryId,omitempty"`
	CategoryName string     `json:"categoryName,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	InventoryID  int64      `json:"inventoryId,omitempty"`
	Discounts    []Discount `json:"discounts,omitempty"`
}

func (p Product) RecordID() string { return formatID(p.ID) }

// UnmarshalJSON accepts "productId" where some endpoints drift from "id".
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		ProductID *int64 `json:"productId"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == 0 && aux.ProductID != nil {
		p.ID = *aux.ProductID
	}
	return nil
}

// Validate checks the fields the product form requires.
func (p Product) Validate() error {
	c := newChecker("product")
	c.required("name", p.Name)
	c.nonNegative("price", p.Price)
	return c.result()
}

// Category groups products.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ProductCount int    `json:"productCount,omitempty"`
}

func (c Category) RecordID() string { return formatID(c.ID) }

// Validate requires a category name.
func (c Category) Validate() error {
	ck := newChecker("category")
	ck.required("name", c.Name)
	return ck.result()
}

// Discount is a percentage reduction attached to a product for a date range.
type Discount struct {
	DiscountID         int64   `json:"discountId"`
	Code               string  `json:"code"`
	Description        string  `json:"description"`
	DiscountPercentage float64 `json:"discountPercentage"`
	StartDate          string  `json:"startDate"`
	EndDate            string  `json:"endDate"`
	Active             bool    `json:"active"`
	ProductID          int64   `json:"productId,omitempty"`
}

func (d Discount) RecordID() string { return formatID(d.DiscountID) }

// Validate enforces the percentage range and a coherent date window.
func (d Discount) Validate() error {
	c := newChecker("discount")
	c.required("code", d.Code)
	c.required("description", d.Description)
	if d.DiscountPercentage < 0 || d.DiscountPercentage > 100 {
		c.fail("discountPercentage", "must be between 0 and 100")
	}
	start, startOK := ParseDate(d.StartDate)
	end, endOK := ParseDate(d.EndDate)
	if d.StartDate != "" && !startOK {
		c.fail("startDate", "is not a valid date")
	}
	if d.EndDate != "" && !endOK {
		c.fail("endDate", "is not a valid date")
	}
	if startOK && endOK && end.Before(start) {
		c.fail("endDate", "must not be before startDate")
	}
	return c.result()
}

// CoffeeBean is a stocked bean variety sold by weight.
type CoffeeBean struct {
	BeanID        int64   `json:"beanId"`
	Name          string  `json:"name"`
	Origin        string  `json:"origin,omitempty"`
	RoastLevel    string  `json:"roastLevel,omitempty"`
	PricePerKg    float64 `json:"pricePerKg"`
	StockQuantity int     `json:"stockQuantity"`
}

func (b CoffeeBean) RecordID() string { return formatID(b.BeanID) }

// Validate requires a name and non-negative price and stock.
func (b CoffeeBean) Validate() error {
	c := newChecker("coffee bean")
	c.required("name", b.Name)
	c.nonNegative("pricePerKg", b.PricePerKg)
	c.nonNegative("stockQuantity", float64(b.StockQuantity))
	return c.result()
}

// Inventory tracks stock for one product.
type Inventory struct {
	InventoryID   int64  `json:"inventoryId"`
	ProductID     int64  `json:"productId"`
	ProductName   string `json:"productName,omitempty"`
	StockQuantity int    `json:"stockQuantity"`
	RestockDate   string `json:"restockDate,omitempty"`
}

func (i Inventory) RecordID() string { return formatID(i.InventoryID) }

// Validate requires the product reference and a non-negative quantity.
func (i Inventory) Validate() error {
	c := newChecker("inventory")
	if i.ProductID <= 0 {
		c.fail("productId", "is required")
	}
	c.nonNegative("stockQuantity", float64(i.StockQuantity))
	if i.RestockDate != "" {
		if _, ok := ParseDate(i.RestockDate); !ok {
			c.fail("restockDate", "is not a valid date")
		}
	}
	return c.result()
}
