package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	"github.com/pedidofacil/pedidofacil/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Preload("Items").First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Preload("Items").First(&invoice, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		stmt = stmt.Where("number LIKE ? OR client_name LIKE ?", like, like)
	}
	if filter.IssuedAfter != nil {
		stmt = stmt.Where("issue_date >= ?", *filter.IssuedAfter)
	}
	if filter.IssuedUntil != nil {
		stmt = stmt.Where("issue_date <= ?", *filter.IssuedUntil)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []*domain.Invoice
	err := page.Apply(stmt).
		Preload("Items").
		Order("issue_date desc, id desc").
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.InvoiceItem{}, "invoice_id = ?", invoice.ID).Error; err != nil {
			return err
		}
		// Save would upsert the stale association rows; persist the
		// invoice columns and recreate the items explicitly instead.
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		for i := range invoice.Items {
			invoice.Items[i].InvoiceID = invoice.ID
		}
		if len(invoice.Items) > 0 {
			if err := tx.Create(&invoice.Items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.StatusStat, int64, error) {
	var stats []domain.StatusStat
	err := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total_value").
		Group("status").
		Order("status").
		Scan(&stats).Error
	if err != nil {
		return nil, 0, err
	}

	var overdue int64
	err = db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("due_date < ? AND status NOT IN ?", now, []domain.InvoiceStatus{
			domain.InvoiceStatusPaid,
			domain.InvoiceStatusCanceled,
		}).
		Count(&overdue).Error
	if err != nil {
		return nil, 0, err
	}
	return stats, overdue, nil
}
