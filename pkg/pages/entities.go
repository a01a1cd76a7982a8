package pages

import (
	"strconv"

	"backoffice/pkg/api"
	"backoffice/pkg/models"
)

// Entity describes how one record type is listed and edited.
type Entity[T api.Record] struct {
	Slug     string
	Title    string
	Endpoint api.Endpoint
	Columns  []string
	Row      func(T) []string
	ReadOnly bool
	// NeedsProducts loads the product choices alongside the form.
	NeedsProducts bool
}

func fmtID(v int64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatInt(v, 10)
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func percent(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) + "%" }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

var Products = Entity[models.Product]{
	Slug:     "products",
	Title:    "Products",
	Endpoint: api.Products,
	Columns:  []string{"ID", "Name", "Price", "Category", "Description"},
	Row: func(p models.Product) []string {
		return []string{fmtID(p.ID), p.Name, money(p.Price), p.CategoryName, p.Description}
	},
}

var Categories = Entity[models.Category]{
	Slug:     "categories",
	Title:    "Categories",
	Endpoint: api.Categories,
	Columns:  []string{"ID", "Name", "Description"},
	Row: func(c models.Category) []string {
		return []string{fmtID(c.ID), c.Name, c.Description}
	},
}

var Discounts = Entity[models.Discount]{
	Slug:     "discount",
	Title:    "Discounts",
	Endpoint: api.Discounts,
	Columns:  []string{"ID", "Code", "Description", "Percentage", "Start", "End", "Active", "Product"},
	Row: func(d models.Discount) []string {
		return []string{fmtID(d.DiscountID), d.Code, d.Description, percent(d.DiscountPercentage), d.StartDate, d.EndDate, yesNo(d.Active), fmtID(d.ProductID)}
	},
	NeedsProducts: true,
}

var CoffeeBeans = Entity[models.CoffeeBean]{
	Slug:     "coffee-bean",
	Title:    "Coffee beans",
	Endpoint: api.CoffeeBeans,
	Columns:  []string{"ID", "Name", "Origin", "Roast", "Price/kg", "Stock"},
	Row: func(b models.CoffeeBean) []string {
		return []string{fmtID(b.BeanID), b.Name, b.Origin, b.RoastLevel, money(b.PricePerKg), strconv.Itoa(b.StockQuantity)}
	},
}

var Inventories = Entity[models.Inventory]{
	Slug:     "inventory",
	Title:    "Inventory",
	Endpoint: api.Inventories,
	Columns:  []string{"ID", "Product", "Stock", "Restock date"},
	Row: func(i models.Inventory) []string {
		product := i.ProductName
		if product == "" {
			product = fmtID(i.ProductID)
		}
		return []string{fmtID(i.InventoryID), product, strconv.Itoa(i.StockQuantity), i.RestockDate}
	},
	NeedsProducts: true,
}

var Orders = Entity[models.Order]{
	Slug:     "order",
	Title:    "Orders",
	Endpoint: api.Orders,
	Columns:  []string{"ID", "Customer", "Status", "Total", "Date", "Address"},
	Row: func(o models.Order) []string {
		return []string{fmtID(o.OrderID), o.User.Full(), o.OrderStatus, money(o.TotalAmount), o.OrderDate, o.DeliveryAddress}
	},
}

var OrderItems = Entity[models.OrderItem]{
	Slug:     "order-item",
	Title:    "Order items",
	Endpoint: api.OrderItems,
	Columns:  []string{"ID", "Order", "Product", "Quantity", "Price"},
	Row: func(i models.OrderItem) []string {
		product := ""
		if i.Product != nil {
			product = i.Product.Name
		}
		return []string{fmtID(i.OrderItemID), fmtID(i.OrderID), product, strconv.Itoa(i.Quantity), money(i.Price)}
	},
	ReadOnly: true,
}

var Payments = Entity[models.Payment]{
	Slug:     "payment",
	Title:    "Payments",
	Endpoint: api.Payments,
	Columns:  []string{"ID", "Order", "Amount", "Method", "Status", "Date"},
	Row: func(p models.Payment) []string {
		return []string{fmtID(p.PaymentID), fmtID(p.OrderID), money(p.Amount), p.PaymentMethod, p.PaymentStatus, p.PaymentDate}
	},
	ReadOnly: true,
}

var Reviews = Entity[models.Review]{
	Slug:     "review",
	Title:    "Reviews",
	Endpoint: api.Reviews,
	Columns:  []string{"ID", "Product", "Reviewer", "Rating", "Review", "Date"},
	Row: func(r models.Review) []string {
		product := fmtID(r.ProductID)
		if r.Product != nil && r.Product.Name != "" {
			product = r.Product.Name
		}
		return []string{fmtID(r.ReviewID), product, r.User.Full(), strconv.Itoa(r.Rating), r.ReviewText, r.ReviewDate}
	},
	NeedsProducts: true,
}

var StaffShifts = Entity[models.StaffShift]{
	Slug:     "staff-shift",
	Title:    "Staff shifts",
	Endpoint: api.StaffShifts,
	Columns:  []string{"ID", "Staff", "Date", "Start", "End"},
	Row: func(s models.StaffShift) []string {
		staff := s.User
		if staff == "" {
			staff = fmtID(s.UserID)
		}
		return []string{fmtID(s.ID), staff, s.ShiftDate, s.StartTime, s.EndTime}
	},
}

var Users = Entity[models.User]{
	Slug:     "users",
	Title:    "Users",
	Endpoint: api.Users,
	Columns:  []string{"ID", "First name", "Last name", "Email", "Role", "Phone"},
	Row: func(u models.User) []string {
		return []string{fmtID(u.ID), u.FirstName, u.LastName, u.Email, u.Role, u.PhoneNumber}
	},
}
