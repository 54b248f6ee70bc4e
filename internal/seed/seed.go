package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/config"
	invoicedomain "github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultAdminName     = "Administrator"
	defaultAdminEmail    = "admin@pedidofacil.com"
	defaultAdminPassword = "admin123"
)

// EnsureDefaultAdmin creates the bootstrap admin account when no user
// owns its email yet. Startup depends on this so a fresh install is
// usable without manual SQL.
func EnsureDefaultAdmin(db *gorm.DB, settings config.Settings) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureUserTx(ctx, tx, node, settings, userdomain.User{
			Name:  defaultAdminName,
			Email: defaultAdminEmail,
			Role:  userdomain.RoleAdmin,
		}, defaultAdminPassword)
		return err
	})
}

// EnsureDemoData loads a small demo dataset of users, orders and
// invoices. Existing rows keyed by email, client/product or invoice
// number are left alone so reruns are harmless.
func EnsureDemoData(db *gorm.DB, settings config.Settings) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		admin, err := ensureUserTx(ctx, tx, node, settings, userdomain.User{
			Name:  defaultAdminName,
			Email: defaultAdminEmail,
			Role:  userdomain.RoleAdmin,
		}, defaultAdminPassword)
		if err != nil {
			return err
		}

		demoUsers := []struct {
			user     userdomain.User
			password string
		}{
			{userdomain.User{Name: "Maria Santos", Email: "manager@pedidofacil.com", Role: userdomain.RoleManager}, "manager123"},
			{userdomain.User{Name: "Pedro Oliveira", Email: "operator@pedidofacil.com", Role: userdomain.RoleOperator}, "operator123"},
			{userdomain.User{Name: "Ana Costa", Email: "ana.costa@pedidofacil.com", Role: userdomain.RoleOperator}, "ana123"},
			{userdomain.User{Name: "Carlos Ferreira", Email: "carlos.ferreira@pedidofacil.com", Role: userdomain.RoleManager}, "carlos123"},
		}
		for _, entry := range demoUsers {
			if _, err := ensureUserTx(ctx, tx, node, settings, entry.user, entry.password); err != nil {
				return err
			}
		}

		orders, err := ensureDemoOrdersTx(ctx, tx, node, admin.ID)
		if err != nil {
			return err
		}
		return ensureDemoInvoicesTx(ctx, tx, node, admin.ID, orders)
	})
}

func ensureUserTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, settings config.Settings, template userdomain.User, password string) (userdomain.User, error) {
	var user userdomain.User
	err := tx.WithContext(ctx).Where("email = ?", strings.ToLower(template.Email)).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), settings.BcryptCost)
	if err != nil {
		return user, err
	}
	now := time.Now().UTC()
	user = userdomain.User{
		ID:           node.Generate(),
		Name:         template.Name,
		Email:        strings.ToLower(template.Email),
		PasswordHash: string(hashed),
		Role:         template.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return user, err
	}
	return user, nil
}

func ensureDemoOrdersTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, createdBy snowflake.ID) ([]orderdomain.Order, error) {
	now := time.Now().UTC()
	templates := []orderdomain.Order{
		{Client: "Empresa ABC Ltda", Product: "Notebook Dell Inspiron 15", Quantity: 100, UnitPrice: 2850.00, DueDate: now.AddDate(0, 0, 7), Status: orderdomain.OrderStatusPending, Notes: "Urgent order, VIP client"},
		{Client: "Comercio XYZ", Product: "Mouse Wireless Logitech", Quantity: 50, UnitPrice: 89.90, DueDate: now.AddDate(0, 0, 14), Status: orderdomain.OrderStatusInProduction, Notes: "Deliver to headquarters"},
		{Client: "Distribuidora 123", Product: "Teclado Mecanico RGB", Quantity: 200, UnitPrice: 299.90, DueDate: now.AddDate(0, 0, 5), Status: orderdomain.OrderStatusReady, Notes: "Special packaging"},
		{Client: "Loja Virtual Tech", Product: "Monitor LG 24 Full HD", Quantity: 75, UnitPrice: 599.90, DueDate: now.AddDate(0, 0, 10), Status: orderdomain.OrderStatusPending, Notes: "Business hours delivery"},
		{Client: "Escritorio Moderno", Product: "Impressora HP LaserJet", Quantity: 30, UnitPrice: 1299.90, DueDate: now.AddDate(0, 0, 3), Status: orderdomain.OrderStatusDelivered, Notes: "Installation included"},
		{Client: "Startup Inovacao", Product: "Webcam HD 1080p", Quantity: 25, UnitPrice: 159.90, DueDate: now.AddDate(0, 0, 12), Status: orderdomain.OrderStatusInProduction, Notes: "Home office equipment"},
		{Client: "Escola Municipal", Product: "Tablet Samsung Galaxy Tab A", Quantity: 150, UnitPrice: 899.90, DueDate: now.AddDate(0, 0, 20), Status: orderdomain.OrderStatusPending, Notes: "Educational project"},
		{Client: "Hospital Sao Lucas", Product: "Scanner de Codigo de Barras", Quantity: 40, UnitPrice: 450.00, DueDate: now.AddDate(0, 0, 8), Status: orderdomain.OrderStatusCanceled, Notes: "Canceled by the client"},
	}

	orders := make([]orderdomain.Order, 0, len(templates))
	for _, template := range templates {
		var order orderdomain.Order
		err := tx.WithContext(ctx).
			Where("client = ? AND product = ?", template.Client, template.Product).
			First(&order).Error
		if err == nil {
			orders = append(orders, order)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		order = template
		order.ID = node.Generate()
		order.CreatedBy = createdBy
		order.CreatedAt = now
		order.UpdatedAt = now
		order.ComputeTotal()
		if err := tx.WithContext(ctx).Create(&order).Error; err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func ensureDemoInvoicesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, issuedBy snowflake.ID, orders []orderdomain.Order) error {
	now := time.Now().UTC()
	templates := []invoicedomain.Invoice{
		{
			Number: "NF001", Series: "001", Type: invoicedomain.InvoiceTypeOutbound,
			DueDate: now.AddDate(0, 0, 30),
			Client: invoicedomain.Client{
				Name: "Empresa ABC Ltda", CNPJ: "12.345.678/0001-90",
				Address: invoicedomain.Address{Street: "Rua das Flores", Number: "123", District: "Centro", City: "Sao Paulo", State: "SP", ZipCode: "01234-567"},
			},
			Items:  []invoicedomain.InvoiceItem{{Product: "Notebook Dell Inspiron 15", Quantity: 100, UnitPrice: 2850.00}},
			ICMS:   2850.00, PIS: 185.25, COFINS: 855.00,
			Status: invoicedomain.InvoiceStatusIssued,
		},
		{
			Number: "NF002", Series: "001", Type: invoicedomain.InvoiceTypeOutbound,
			DueDate: now.AddDate(0, 0, 25),
			Client: invoicedomain.Client{
				Name: "Comercio XYZ", CNPJ: "98.765.432/0001-10",
				Address: invoicedomain.Address{Street: "Avenida Principal", Number: "456", District: "Jardim America", City: "Rio de Janeiro", State: "RJ", ZipCode: "20000-000"},
			},
			Items:  []invoicedomain.InvoiceItem{{Product: "Mouse Wireless Logitech", Quantity: 50, UnitPrice: 89.90}},
			ICMS:   449.50, PIS: 29.22, COFINS: 134.85,
			Status: invoicedomain.InvoiceStatusPaid,
		},
		{
			Number: "NF003", Series: "001", Type: invoicedomain.InvoiceTypeOutbound,
			DueDate: now.AddDate(0, 0, 15),
			Client: invoicedomain.Client{
				Name: "Distribuidora 123", CNPJ: "11.222.333/0001-44",
				Address: invoicedomain.Address{Street: "Rua do Comercio", Number: "789", District: "Centro Empresarial", City: "Belo Horizonte", State: "MG", ZipCode: "30000-000"},
			},
			Items:  []invoicedomain.InvoiceItem{{Product: "Teclado Mecanico RGB", Quantity: 200, UnitPrice: 299.90}},
			ICMS:   5998.00, PIS: 389.87, COFINS: 1799.40,
			Status: invoicedomain.InvoiceStatusDraft,
		},
		{
			Number: "NF004", Series: "001", Type: invoicedomain.InvoiceTypeOutbound,
			DueDate: now.AddDate(0, 0, 35),
			Client: invoicedomain.Client{
				Name: "Loja Virtual Tech", CNPJ: "55.666.777/0001-88",
				Address: invoicedomain.Address{Street: "Avenida Digital", Number: "321", District: "Tech Park", City: "Curitiba", State: "PR", ZipCode: "80000-000"},
			},
			Items:  []invoicedomain.InvoiceItem{{Product: "Monitor LG 24 Full HD", Quantity: 75, UnitPrice: 599.90}},
			ICMS:   4499.25, PIS: 292.45, COFINS: 1349.78,
			Status: invoicedomain.InvoiceStatusIssued,
		},
		{
			Number: "NF005", Series: "001", Type: invoicedomain.InvoiceTypeOutbound,
			// Already past due so overdue statistics have data.
			DueDate: now.AddDate(0, 0, -5),
			Client: invoicedomain.Client{
				Name: "Escritorio Moderno", CNPJ: "99.888.777/0001-66",
				Address: invoicedomain.Address{Street: "Rua dos Escritorios", Number: "555", District: "Centro Empresarial", City: "Salvador", State: "BA", ZipCode: "40000-000"},
			},
			Items:  []invoicedomain.InvoiceItem{{Product: "Impressora HP LaserJet", Quantity: 30, UnitPrice: 1299.90}},
			ICMS:   3899.70, PIS: 253.48, COFINS: 1169.91,
			Status: invoicedomain.InvoiceStatusIssued,
		},
	}

	for i, template := range templates {
		if i >= len(orders) {
			break
		}
		var existing invoicedomain.Invoice
		err := tx.WithContext(ctx).Where("number = ?", template.Number).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		invoice := template
		invoice.ID = node.Generate()
		invoice.IssueDate = now
		invoice.OrderID = orders[i].ID
		invoice.IssuedBy = issuedBy
		invoice.CreatedAt = now
		invoice.UpdatedAt = now
		for j := range invoice.Items {
			invoice.Items[j].ID = node.Generate()
			invoice.Items[j].InvoiceID = invoice.ID
		}
		invoice.ComputeTotals()
		if err := tx.WithContext(ctx).Create(&invoice).Error; err != nil {
			return err
		}
	}
	return nil
}
