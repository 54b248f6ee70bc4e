package domain

import "errors"

var (
	ErrNotFound        = errors.New("invoice not found")
	ErrOrderHasInvoice = errors.New("order already has an invoice")
	ErrNumberTaken     = errors.New("invoice number already in use")
	ErrNotEditable     = errors.New("cannot edit an issued or paid invoice")
	ErrNotDraft        = errors.New("only draft invoices can be issued")
	ErrAlreadyCanceled = errors.New("invoice is already canceled")
	ErrCancelPaid      = errors.New("cannot cancel a paid invoice")
	ErrAlreadyPaid     = errors.New("invoice is already paid")
	ErrPayCanceled     = errors.New("cannot mark a canceled invoice as paid")
)
