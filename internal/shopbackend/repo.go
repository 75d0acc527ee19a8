package shopbackend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRepo struct {
	DB *gorm.DB
}

var (
	ErrNotFound = errors.New("not found")
	// ErrCartEmpty and ErrProductGone reject a checkout at commit time.
	ErrCartEmpty   = errors.New("no items in cart")
	ErrProductGone = errors.New("product no longer exists")
)

func newProductID() string { return "prd_" + uuid.NewString() }
func newOrderID() string   { return "ord_" + uuid.NewString() }

func (r *GormRepo) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProducts(ctx context.Context) ([]Product, error) {
	var items []Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *Product) error {
	prod.ID = newProductID()
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) UpdateProduct(ctx context.Context, prod *Product) error {
	res := r.DB.WithContext(ctx).Model(&Product{}).Where("id = ?", prod.ID).
		Updates(map[string]any{
			"name":        prod.Name,
			"description": prod.Description,
			"price":       prod.Price,
			"image_ref":   prod.ImageRef,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id string) error {
	res := r.DB.WithContext(ctx).Delete(&Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) SearchProducts(ctx context.Context, q string) ([]Product, error) {
	like := "%" + q + "%"
	var items []Product
	if err := r.DB.WithContext(ctx).
		Where("name LIKE ? OR description LIKE ?", like, like).
		Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCart(ctx context.Context, userID string) ([]CartItem, error) {
	var items []CartItem
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SetCartQuantity upserts the single line for (user, product),
// replacing any previous quantity.
func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, productID string, quantity int64) error {
	item := CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{"quantity": quantity}),
	}).Create(&item).Error
}

// RemoveFromCart deletes the line if present; absent is not an error.
func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID string) error {
	return r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&CartItem{}).Error
}

func (r *GormRepo) ClearCart(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&CartItem{}).Error
}

// CreateOrder runs the whole checkout transition in one transaction:
// read the authoritative cart, price every line at the current
// catalog price, create the frozen order, clear the cart. Any failure
// rolls the whole thing back and the cart stays as it was.
func (r *GormRepo) CreateOrder(ctx context.Context, userID, customerName, customerEmail, shippingAddress string) (*Order, error) {
	var order Order

	txErr := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []CartItem
		if err := tx.Where("user_id = ?", userID).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		var (
			total      int64
			orderItems []OrderItem
		)
		for _, it := range items {
			var p Product
			if err := tx.Where("id = ?", it.ProductID).First(&p).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: %s", ErrProductGone, it.ProductID)
				}
				return err
			}
			total += p.Price * it.Quantity
			orderItems = append(orderItems, OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: p.Price,
			})
		}

		order = Order{
			ID:              newOrderID(),
			UserID:          userID,
			CustomerName:    customerName,
			CustomerEmail:   customerEmail,
			ShippingAddress: shippingAddress,
			Total:           total,
			CreatedAt:       time.Now().UTC(),
			Items:           orderItems,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).Delete(&CartItem{}).Error
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	var orders []Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetAllOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := r.DB.WithContext(ctx).Preload("Items").
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *GormRepo) SaveProfile(ctx context.Context, profile *UserProfile) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{"name": profile.Name}),
	}).Create(profile).Error
}
