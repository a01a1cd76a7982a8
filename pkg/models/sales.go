package models

import "encoding/json"

// PersonName is the embedded customer or reviewer shown next to a record.
type PersonName struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Full joins the first and last name.
func (p *PersonName) Full() string {
	if p == nil {
		return ""
	}
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Order is a customer purchase.
type Order struct {
	OrderID         int64       `json:"orderId"`
	UserID          int64       `json:"userId"`
	User            *PersonName `json:"user,omitempty"`
	PaymentID       int64       `json:"paymentId,omitempty"`
	OrderStatus     string      `json:"orderStatus"`
	TotalAmount     float64     `json:"totalAmount"`
	OrderDate       string      `json:"orderDate,omitempty"`
	DeliveryAddress string      `json:"deliveryAddress"`
}

func (o Order) RecordID() string { return formatID(o.OrderID) }

// OrderStatuses lists the states the order editor offers.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

// Validate requires a known status and a delivery address.
func (o Order) Validate() error {
	c := newChecker("order")
	c.required("deliveryAddress", o.DeliveryAddress)
	c.required("orderStatus", o.OrderStatus)
	if o.OrderStatus != "" && !knownStatus(o.OrderStatus) {
		c.fail("orderStatus", "is not a known status")
	}
	c.nonNegative("totalAmount", o.TotalAmount)
	return c.result()
}

func knownStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ProductRef is the short product reference embedded in other records.
type ProductRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// OrderItem is one line of an order.
type OrderItem struct {
	OrderItemID int64       `json:"orderItemId"`
	OrderID     int64       `json:"orderId"`
	Product     *ProductRef `json:"product,omitempty"`
	Quantity    int         `json:"quantity"`
	Price       float64     `json:"price"`
}

func (i OrderItem) RecordID() string { return formatID(i.OrderItemID) }

// Payment records money received for an order.
type Payment struct {
	PaymentID     int64   `json:"paymentId"`
	OrderID       int64   `json:"orderId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	PaymentStatus string  `json:"paymentStatus,omitempty"`
	PaymentDate   string  `json:"paymentDate,omitempty"`
}

func (p Payment) RecordID() string { return formatID(p.PaymentID) }

// Review is a customer rating of a product.
type Review struct {
	ReviewID   int64       `json:"reviewId"`
	UserID     int64       `json:"userId"`
	ProductID  int64       `json:"productId"`
	Rating     int         `json:"rating"`
	ReviewText string      `json:"reviewText,omitempty"`
	ReviewDate string      `json:"reviewDate,omitempty"`
	User       *PersonName `json:"user,omitempty"`
	Product    *ProductRef `json:"product,omitempty"`
}

func (r Review) RecordID() string { return formatID(r.ReviewID) }

// UnmarshalJSON accepts "id", which the detail endpoint uses instead of "reviewId".
func (r *Review) UnmarshalJSON(data []byte) error {
	type plain Review
	aux := struct {
		*plain
		ID *int64 `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ReviewID == 0 && aux.ID != nil {
		r.ReviewID = *aux.ID
	}
	return nil
}

// Validate requires a product, an author and a rating from 1 to 5.
func (r Review) Validate() error {
	c := newChecker("review")
	if r.ProductID <= 0 {
		c.fail("productId", "is required")
	}
	if r.UserID <= 0 {
		c.fail("userId", "is required")
	}
	if r.Rating < 1 || r.Rating > 5 {
		c.fail("rating", "must be between 1 and 5")
	}
	return c.result()
}
