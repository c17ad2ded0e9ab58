package models

// SaleStatus tracks the sale saga. PROCESSING means the header row exists but
// later steps have not finished; PARTIAL means a post-header step failed and
// the sale needs reconciliation before it can be trusted.
type SaleStatus string

const (
	SaleStatusProcessing SaleStatus = "PROCESSING"
	SaleStatusCompleted  SaleStatus = "COMPLETED"
	SaleStatusPartial    SaleStatus = "PARTIAL"
)

// DocumentType is the fiscal document class, which doubles as the sequence
// type key of the FiscalSequence that numbers it.
type DocumentType string

const (
	DocumentTypeFactura DocumentType = "FACTURA"
)

// FiscalAuditStatus tracks a consumed sequence number. ISSUED rows without a
// matching CONFIRMED flip are numbers that were burned with no document.
type FiscalAuditStatus string

const (
	FiscalAuditStatusIssued    FiscalAuditStatus = "ISSUED"
	FiscalAuditStatusConfirmed FiscalAuditStatus = "CONFIRMED"
)
