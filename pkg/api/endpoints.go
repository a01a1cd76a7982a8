package api

// Endpoint describes where an entity lives on the API. Path is the
// collection path; the optional templates override the defaults
// "{Path}", "{Path}/{id}" and "{Path}/{id}" for list, detail and delete.
type Endpoint struct {
	Entity     string
	Path       string
	ListPath   string
	DetailPath string
	DeletePath string
	// Authorized sends the session bearer token. Only orders require it;
	// the other entities are served publicly by the API.
	Authorized bool
}

func (e Endpoint) listPath() string {
	if e.ListPath != "" {
		return e.ListPath
	}
	return e.Path
}

func (e Endpoint) detailPath() string {
	if e.DetailPath != "" {
		return e.DetailPath
	}
	return e.Path + "/{id}"
}

func (e Endpoint) deletePath() string {
	if e.DeletePath != "" {
		return e.DeletePath
	}
	return e.detailPath()
}

// Entity endpoints of the retail API.
var (
	Products    = Endpoint{Entity: "product", Path: "Products"}
	Categories  = Endpoint{Entity: "category", Path: "Categories"}
	Discounts   = Endpoint{Entity: "discount", Path: "Discount"}
	CoffeeBeans = Endpoint{Entity: "coffee bean", Path: "CoffeeBean"}
	Inventories = Endpoint{Entity: "inventory", Path: "Inventory"}
	Orders      = Endpoint{
		Entity:     "order",
		Path:       "Orders",
		ListPath:   "Orders/orders/{userId}",
		DeletePath: "Orders/orders/{id}",
		Authorized: true,
	}
	OrderItems  = Endpoint{Entity: "order item", Path: "OrderItem"}
	Payments    = Endpoint{Entity: "payment", Path: "Payment"}
	Reviews     = Endpoint{Entity: "review", Path: "Review"}
	StaffShifts = Endpoint{Entity: "staff shift", Path: "StaffShift"}
	Users       = Endpoint{Entity: "user", Path: "Users"}
)

// Auth endpoint paths.
const (
	LoginPath    = "Auth/login"
	RegisterPath = "Auth/register"
)
