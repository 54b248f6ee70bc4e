package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bwmarrin/snowflake"
	invoicedomain "github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRecord mirrors the user model with the password hash included so
// a restored database keeps its logins. The API never serves this
// shape.
type UserRecord struct {
	ID           snowflake.ID    `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"password_hash"`
	Role         userdomain.Role `json:"role"`
	Active       bool            `json:"active"`
	LastLoginAt  *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Snapshot is the interchange document produced by Export and consumed
// by Import.
type Snapshot struct {
	Version    int                     `json:"version"`
	ExportedAt time.Time               `json:"exported_at"`
	Users      []UserRecord            `json:"users"`
	Orders     []orderdomain.Order     `json:"orders"`
	Invoices   []invoicedomain.Invoice `json:"invoices"`
}

const snapshotVersion = 1

// Export streams all users, orders and invoices as a JSON document.
func Export(ctx context.Context, db *gorm.DB, w io.Writer) error {
	if db == nil {
		return errors.New("transfer database handle is required")
	}

	snapshot := Snapshot{
		Version:    snapshotVersion,
		ExportedAt: time.Now().UTC(),
	}

	var users []userdomain.User
	if err := db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return fmt.Errorf("export users: %w", err)
	}
	snapshot.Users = make([]UserRecord, 0, len(users))
	for _, user := range users {
		snapshot.Users = append(snapshot.Users, UserRecord{
			ID:           user.ID,
			Name:         user.Name,
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			Role:         user.Role,
			Active:       user.Active,
			LastLoginAt:  user.LastLoginAt,
			CreatedAt:    user.CreatedAt,
			UpdatedAt:    user.UpdatedAt,
		})
	}

	if err := db.WithContext(ctx).Order("id").Find(&snapshot.Orders).Error; err != nil {
		return fmt.Errorf("export orders: %w", err)
	}
	if err := db.WithContext(ctx).Preload("Items").Order("id").Find(&snapshot.Invoices).Error; err != nil {
		return fmt.Errorf("export invoices: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(snapshot)
}

// Import loads a snapshot document, upserting by primary key inside a
// single transaction.
func Import(ctx context.Context, db *gorm.DB, r io.Reader) error {
	if db == nil {
		return errors.New("transfer database handle is required")
	}

	var snapshot Snapshot
	if err := json.NewDecoder(r).Decode(&snapshot); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snapshot.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}

		for _, record := range snapshot.Users {
			user := userdomain.User{
				ID:           record.ID,
				Name:         record.Name,
				Email:        record.Email,
				PasswordHash: record.PasswordHash,
				Role:         record.Role,
				Active:       record.Active,
				LastLoginAt:  record.LastLoginAt,
				CreatedAt:    record.CreatedAt,
				UpdatedAt:    record.UpdatedAt,
			}
			if err := tx.Clauses(upsert).Create(&user).Error; err != nil {
				return fmt.Errorf("import user %s: %w", user.Email, err)
			}
		}
		for i := range snapshot.Orders {
			if err := tx.Clauses(upsert).Create(&snapshot.Orders[i]).Error; err != nil {
				return fmt.Errorf("import order %s: %w", snapshot.Orders[i].ID.String(), err)
			}
		}
		for i := range snapshot.Invoices {
			invoice := snapshot.Invoices[i]
			items := invoice.Items
			invoice.Items = nil
			if err := tx.Omit("Items").Clauses(upsert).Create(&invoice).Error; err != nil {
				return fmt.Errorf("import invoice %s: %w", invoice.Number, err)
			}
			if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&invoicedomain.InvoiceItem{}).Error; err != nil {
				return err
			}
			for j := range items {
				items[j].InvoiceID = invoice.ID
				if err := tx.Clauses(upsert).Create(&items[j]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
