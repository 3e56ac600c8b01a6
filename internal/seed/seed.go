// 文件路径: internal/seed/seed.go
// 模块说明: 从 YAML 文件导入演示数据（餐厅、商品、顾客、订单、后台账号）。
package seed

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/orderdesk/orderdesk/internal/order"
	"github.com/orderdesk/orderdesk/internal/repository"
	"github.com/orderdesk/orderdesk/internal/service"
)

// File is the root of a seed document.
type File struct {
	Customers   []Customer   `yaml:"customers"`
	Restaurants []Restaurant `yaml:"restaurants"`
}

// Customer 顾客，订单通过 email 引用。
type Customer struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// Restaurant 餐厅及其商品、订单与后台账号。
type Restaurant struct {
	Name     string    `yaml:"name"`
	Admins   []Admin   `yaml:"admins"`
	Products []Product `yaml:"products"`
	Orders   []Order   `yaml:"orders"`
}

// Admin 后台账号，密码以明文写在种子文件里，导入时哈希。
type Admin struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

// Product 商品；price 用字符串保留精度。
type Product struct {
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Views       int64  `yaml:"views"`
}

// Order 通过商品名与顾客 email 关联。
type Order struct {
	Product  string `yaml:"product"`
	Customer string `yaml:"customer"`
	Quantity int64  `yaml:"quantity"`
	Status   string `yaml:"status"`
	Payment  string `yaml:"payment"`
	// AgeMinutes places CreatedAt in the past so listings have a stable order.
	AgeMinutes int64 `yaml:"age_minutes"`
}

// Result counts created rows.
type Result struct {
	Restaurants int
	Admins      int
	Products    int
	Customers   int
	Orders      int
}

// Decode 解析并校验种子文件。
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed yaml: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks references and values before anything is written.
func (f *File) Validate() error {
	customers := make(map[string]bool, len(f.Customers))
	for _, c := range f.Customers {
		email := strings.ToLower(strings.TrimSpace(c.Email))
		if email == "" {
			return fmt.Errorf("customer %q has no email / 顾客缺少 email", c.Name)
		}
		customers[email] = true
	}
	for _, r := range f.Restaurants {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("restaurant without name / 餐厅缺少名称")
		}
		products := make(map[string]bool, len(r.Products))
		for _, p := range r.Products {
			if _, err := decimal.NewFromString(p.Price); err != nil {
				return fmt.Errorf("%s/%s: invalid price %q: %w", r.Name, p.Name, p.Price, err)
			}
			if p.Views < 0 {
				return fmt.Errorf("%s/%s: views must not be negative / 浏览量不能为负", r.Name, p.Name)
			}
			products[p.Name] = true
		}
		for i, o := range r.Orders {
			if !products[o.Product] {
				return fmt.Errorf("%s: order %d references unknown product %q", r.Name, i, o.Product)
			}
			if !customers[strings.ToLower(strings.TrimSpace(o.Customer))] {
				return fmt.Errorf("%s: order %d references unknown customer %q", r.Name, i, o.Customer)
			}
			if _, ok := order.ParseStage(o.Status); !ok {
				return fmt.Errorf("%s: order %d has unknown status %q", r.Name, i, o.Status)
			}
			if o.Quantity <= 0 {
				return fmt.Errorf("%s: order %d quantity must be positive", r.Name, i)
			}
		}
	}
	return nil
}

// Apply writes the document into store. Admin accounts go through
// AdminService so passwords are hashed and emails validated.
func Apply(ctx context.Context, store repository.Store, admins service.AdminService, f *File, now time.Time) (Result, error) {
	var res Result
	customerIDs := make(map[string]int64, len(f.Customers))
	for _, c := range f.Customers {
		created, err := store.Customers().Create(ctx, &repository.Customer{Name: c.Name, Email: c.Email, Phone: c.Phone})
		if err != nil {
			return res, fmt.Errorf("create customer %s: %w", c.Email, err)
		}
		customerIDs[strings.ToLower(strings.TrimSpace(c.Email))] = created.ID
		res.Customers++
	}

	for _, r := range f.Restaurants {
		restaurant, err := store.Restaurants().Create(ctx, &repository.Restaurant{Name: r.Name, CreatedAt: now.Unix()})
		if err != nil {
			return res, fmt.Errorf("create restaurant %s: %w", r.Name, err)
		}
		res.Restaurants++

		for _, a := range r.Admins {
			if _, err := admins.Create(ctx, service.CreateAdminInput{
				RestaurantID: restaurant.ID,
				Email:        a.Email,
				Name:         a.Name,
				Password:     a.Password,
			}); err != nil {
				return res, fmt.Errorf("create admin %s: %w", a.Email, err)
			}
			res.Admins++
		}

		productIDs := make(map[string]int64, len(r.Products))
		for _, p := range r.Products {
			created, err := store.Products().Create(ctx, &repository.Product{
				RestaurantID: restaurant.ID,
				Name:         p.Name,
				Price:        decimal.RequireFromString(p.Price),
				Description:  p.Description,
				Category:     p.Category,
				Views:        p.Views,
				CreatedAt:    now.Unix(),
			})
			if err != nil {
				return res, fmt.Errorf("create product %s: %w", p.Name, err)
			}
			productIDs[p.Name] = created.ID
			res.Products++
		}

		for _, o := range r.Orders {
			payment := o.Payment
			if payment == "" {
				payment = "pix"
			}
			at := now.Add(-time.Duration(o.AgeMinutes) * time.Minute).Unix()
			stage, _ := order.ParseStage(o.Status)
			if _, err := store.Orders().Create(ctx, &repository.Order{
				RestaurantID:  restaurant.ID,
				ProductID:     productIDs[o.Product],
				CustomerID:    customerIDs[strings.ToLower(strings.TrimSpace(o.Customer))],
				Quantity:      o.Quantity,
				Status:        string(stage),
				PaymentMethod: payment,
				CreatedAt:     at,
				UpdatedAt:     at,
			}); err != nil {
				return res, fmt.Errorf("create order for %s: %w", o.Product, err)
			}
			res.Orders++
		}
	}
	return res, nil
}
