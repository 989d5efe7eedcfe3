package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Storage struct {
	Schema interface {
		Ensure(ctx context.Context) error
		EnsureLedger(ctx context.Context) error
		Exists(ctx context.Context) (bool, error)
		ForeignKeyCheck(ctx context.Context) ([]ForeignKeyViolation, error)
		Counts(ctx context.Context) (TableCounts, error)
	}

	Entities interface {
		ReplaceAll(ctx context.Context, e *Entities, run *IngestionRun) error
		Load(ctx context.Context) (*Entities, error)
	}

	IngestionHistory interface {
		InsertIngestionRun(ctx context.Context, run *IngestionRun) error
		GetLatest(ctx context.Context, limit int) ([]IngestionRun, error)
		LatestSuccessful(ctx context.Context) (*IngestionRun, error)
	}

	Reports interface {
		PartySupplierPayments(ctx context.Context, f ReportFilter) ([]PartySupplierPayment, error)
		FilersByState(ctx context.Context, f ReportFilter) ([]FilerParty, error)
		SupplierPayments(ctx context.Context, f ReportFilter) ([]SupplierPayment, error)
		SupplierTypeTotals(ctx context.Context) ([]SupplierTypeTotal, error)
		FilersByParty(ctx context.Context) ([]FilerParty, error)
		FilersByMunicipality(ctx context.Context) ([]FilerMunicipality, error)
		AverageSpendByParty(ctx context.Context) ([]PartyAverage, error)
		ContractsByMunicipality(ctx context.Context, f ReportFilter) ([]ContractCount, error)
		SupplierTotals(ctx context.Context, f ReportFilter) ([]SupplierTotal, error)
		PartyTotals(ctx context.Context, f ReportFilter) ([]PartyTotal, error)
		TopMunicipalities(ctx context.Context, f ReportFilter) ([]MunicipalityTotal, error)
		ExploreTable(ctx context.Context, table string, limit int) (*TablePage, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Schema:           &SchemaStore{db: db},
		Entities:         &EntityStore{db: db},
		IngestionHistory: &IngestionHistoryStore{db: db},
		Reports:          &ReportsStore{db: db},
	}
}
