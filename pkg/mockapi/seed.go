package mockapi

import (
	"context"
	"fmt"

	"backoffice/pkg/api"
	"backoffice/pkg/models"
)

// Seeded credentials for local use.
const (
	SeedEmail    = "admin@example.com"
	SeedPassword = "secret"
)

// seed fills every collection with a small demo catalogue.
func (s *Server) seed(ctx context.Context) error {
	adminID, err := s.addAccount(ctx, models.Registration{
		FirstName:   "Ada",
		LastName:    "Admin",
		Email:       SeedEmail,
		Password:    SeedPassword,
		PhoneNumber: "+1 555 0100",
		Role:        "admin",
	})
	if err != nil {
		return fmt.Errorf("admin account: %w", err)
	}
	staffID, err := s.addAccount(ctx, models.Registration{
		FirstName:   "Sam",
		LastName:    "Barista",
		Email:       "sam@example.com",
		Password:    "barista",
		PhoneNumber: "+1 555 0101",
		Role:        "staff",
	})
	if err != nil {
		return fmt.Errorf("staff account: %w", err)
	}

	batches := []struct {
		collection string
		records    []any
	}{
		{api.Categories.Path, []any{
			models.Category{Name: "Coffee", Description: "Brewed and espresso drinks"},
			models.Category{Name: "Pastry", Description: "Baked every morning"},
		}},
		{api.Products.Path, []any{
			models.Product{Name: "Flat White", Price: 4.2, CategoryID: 1, CategoryName: "Coffee"},
			models.Product{Name: "Croissant", Price: 3.1, CategoryID: 2, CategoryName: "Pastry"},
			models.Product{Name: "Cold Brew", Price: 4.8, CategoryID: 1, CategoryName: "Coffee"},
		}},
		{api.Discounts.Path, []any{
			models.Discount{Code: "MORNING10", Description: "Before 9am", DiscountPercentage: 10, StartDate: "2024-01-01", EndDate: "2024-12-31", Active: true, ProductID: 1},
		}},
		{api.CoffeeBeans.Path, []any{
			models.CoffeeBean{Name: "Yirgacheffe", Origin: "Ethiopia", RoastLevel: "light", PricePerKg: 32, StockQuantity: 18},
			models.CoffeeBean{Name: "Huila", Origin: "Colombia", RoastLevel: "medium", PricePerKg: 27.5, StockQuantity: 40},
		}},
		{api.Inventories.Path, []any{
			models.Inventory{ProductID: 1, ProductName: "Flat White", StockQuantity: 120, RestockDate: "2024-06-01"},
			models.Inventory{ProductID: 2, ProductName: "Croissant", StockQuantity: 35, RestockDate: "2024-06-02"},
		}},
		{api.Orders.Path, []any{
			models.Order{UserID: adminID, OrderStatus: "pending", TotalAmount: 7.3, OrderDate: "2024-06-03T08:15:00", DeliveryAddress: "12 Market St",
				User: &models.PersonName{FirstName: "Ada", LastName: "Admin"}},
			models.Order{UserID: adminID, OrderStatus: "delivered", TotalAmount: 4.8, OrderDate: "2024-06-01T10:02:00", DeliveryAddress: "12 Market St",
				User: &models.PersonName{FirstName: "Ada", LastName: "Admin"}},
			models.Order{UserID: staffID, OrderStatus: "processing", TotalAmount: 3.1, OrderDate: "2024-06-03T09:40:00", DeliveryAddress: "4 Mill Lane",
				User: &models.PersonName{FirstName: "Sam", LastName: "Barista"}},
		}},
		{api.OrderItems.Path, []any{
			models.OrderItem{OrderID: 1, Product: &models.ProductRef{ID: 1, Name: "Flat White"}, Quantity: 1, Price: 4.2},
			models.OrderItem{OrderID: 1, Product: &models.ProductRef{ID: 2, Name: "Croissant"}, Quantity: 1, Price: 3.1},
		}},
		{api.Payments.Path, []any{
			models.Payment{OrderID: 2, Amount: 4.8, PaymentMethod: "card", PaymentStatus: "paid", PaymentDate: "2024-06-01T10:03:00"},
		}},
		{api.Reviews.Path, []any{
			models.Review{UserID: staffID, ProductID: 2, Rating: 5, ReviewText: "Flaky and buttery", ReviewDate: "2024-06-02",
				User: &models.PersonName{FirstName: "Sam", LastName: "Barista"}, Product: &models.ProductRef{ID: 2, Name: "Croissant"}},
		}},
		{api.StaffShifts.Path, []any{
			models.StaffShift{UserID: staffID, ShiftDate: "2024-06-04", StartTime: "2024-06-04T06:00:00", EndTime: "2024-06-04T14:00:00", User: "Sam Barista"},
		}},
	}

	for _, batch := range batches {
		for _, v := range batch.records {
			rec, err := toRecord(v)
			if err != nil {
				return err
			}
			if _, err := s.store.Create(ctx, batch.collection, rec); err != nil {
				return fmt.Errorf("%s: %w", batch.collection, err)
			}
		}
	}
	return nil
}
