package transfer

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	pkgdb "github.com/pedidofacil/pedidofacil/pkg/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTransferDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	db, err := pkgdb.NewTest(t.Name() + "_" + name)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&userdomain.User{},
		&orderdomain.Order{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))
	return db
}

func TestExportImportRoundTrip(t *testing.T) {
	source := openTransferDB(t, "source")
	target := openTransferDB(t, "target")
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Second)

	user := userdomain.User{
		ID:           node.Generate(),
		Name:         "Maria Santos",
		Email:        "maria@example.com",
		PasswordHash: "$2a$04$notarealhashbutgoodenough",
		Role:         userdomain.RoleManager,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, source.Create(&user).Error)

	order := orderdomain.Order{
		ID:        node.Generate(),
		Client:    "Empresa ABC Ltda",
		Product:   "Notebook Dell Inspiron 15",
		Quantity:  10,
		UnitPrice: 5.0,
		DueDate:   now.AddDate(0, 0, 7),
		Status:    orderdomain.OrderStatusPending,
		CreatedBy: user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.ComputeTotal()
	require.NoError(t, source.Create(&order).Error)

	invoice := invoicedomain.Invoice{
		ID:        node.Generate(),
		Number:    "NF001",
		Series:    "001",
		Type:      invoicedomain.InvoiceTypeOutbound,
		IssueDate: now,
		DueDate:   now.AddDate(0, 0, 30),
		Client:    invoicedomain.Client{Name: "Empresa ABC Ltda"},
		Items: []invoicedomain.InvoiceItem{
			{ID: node.Generate(), Product: "Notebook Dell Inspiron 15", Quantity: 10, UnitPrice: 5.0},
		},
		ICMS:      5.0,
		PIS:       1.0,
		COFINS:    2.0,
		Status:    invoicedomain.InvoiceStatusIssued,
		OrderID:   order.ID,
		IssuedBy:  user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	invoice.ComputeTotals()
	require.NoError(t, source.Create(&invoice).Error)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, source, &buf))
	require.NoError(t, Import(ctx, target, &buf))

	var restoredUser userdomain.User
	require.NoError(t, target.First(&restoredUser, "id = ?", user.ID).Error)
	require.Equal(t, user.Email, restoredUser.Email)
	require.Equal(t, user.PasswordHash, restoredUser.PasswordHash, "logins must survive a restore")

	var restoredOrder orderdomain.Order
	require.NoError(t, target.First(&restoredOrder, "id = ?", order.ID).Error)
	require.Equal(t, order.Total, restoredOrder.Total)

	var restoredInvoice invoicedomain.Invoice
	require.NoError(t, target.Preload("Items").First(&restoredInvoice, "id = ?", invoice.ID).Error)
	require.Equal(t, invoice.Total, restoredInvoice.Total)
	require.Len(t, restoredInvoice.Items, 1)
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	target := openTransferDB(t, "target")

	err := Import(context.Background(), target, strings.NewReader(`{"version": 99}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported snapshot version")
}

func TestImportIsIdempotent(t *testing.T) {
	source := openTransferDB(t, "source")
	target := openTransferDB(t, "target")
	ctx := context.Background()

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Now().UTC()

	user := userdomain.User{
		ID:           node.Generate(),
		Name:         "Maria Santos",
		Email:        "maria@example.com",
		PasswordHash: "hash",
		Role:         userdomain.RoleOperator,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, source.Create(&user).Error)

	var buf bytes.Buffer
	require.NoError(t, Export(ctx, source, &buf))
	snapshot := buf.Bytes()

	require.NoError(t, Import(ctx, target, bytes.NewReader(snapshot)))
	require.NoError(t, Import(ctx, target, bytes.NewReader(snapshot)))

	var count int64
	require.NoError(t, target.Model(&userdomain.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
