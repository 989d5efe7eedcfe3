package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Table names, in parent-first load order.
const (
	TableLocal      = "Local"
	TablePartido    = "Partido"
	TableFornecedor = "Fornecedor"
	TablePrestador  = "Prestador"
	TableDocumento  = "Documento"
	TableDespesa    = "Despesa"
)

// LoadOrder lists the tables so that every referenced table precedes the
// tables that reference it.
var LoadOrder = []string{
	TableLocal,
	TablePartido,
	TableFornecedor,
	TablePrestador,
	TableDocumento,
	TableDespesa,
}

var tableDDL = map[string]string{
	TableLocal: `CREATE TABLE IF NOT EXISTS Local (
		CD_MUNICIPIO INTEGER PRIMARY KEY,
		NM_MUNICIPIO TEXT,
		SG_UF TEXT
	)`,
	TablePartido: `CREATE TABLE IF NOT EXISTS Partido (
		SG_PARTIDO TEXT PRIMARY KEY NOT NULL,
		NM_PARTIDO TEXT,
		DS_TP_ESFERA_PARTIDARIA TEXT
	)`,
	TableFornecedor: `CREATE TABLE IF NOT EXISTS Fornecedor (
		NR_CPF_CNPJ_FORNECEDOR TEXT PRIMARY KEY NOT NULL,
		NM_FORNECEDOR TEXT,
		DS_TP_FORNECEDOR TEXT
	)`,
	TablePrestador: `CREATE TABLE IF NOT EXISTS Prestador (
		NR_CNPJ_PRESTADOR_CONTA TEXT PRIMARY KEY NOT NULL,
		CD_MUNICIPIO INTEGER,
		SG_PARTIDO TEXT,
		FOREIGN KEY (CD_MUNICIPIO) REFERENCES Local(CD_MUNICIPIO),
		FOREIGN KEY (SG_PARTIDO) REFERENCES Partido(SG_PARTIDO)
	)`,
	TableDocumento: `CREATE TABLE IF NOT EXISTS Documento (
		NR_CNPJ_PRESTADOR_CONTA TEXT NOT NULL,
		NR_DOCUMENTO TEXT NOT NULL,
		CD_TP_DOCUMENTO INTEGER,
		DS_TP_DOCUMENTO TEXT,
		PRIMARY KEY (NR_CNPJ_PRESTADOR_CONTA, NR_DOCUMENTO),
		FOREIGN KEY (NR_CNPJ_PRESTADOR_CONTA) REFERENCES Prestador(NR_CNPJ_PRESTADOR_CONTA)
	)`,
	// DT_PAGAMENTO is declared TEXT: the driver turns DATE-typed columns into
	// time.Time on read, and the ISO string is the stored contract.
	TableDespesa: `CREATE TABLE IF NOT EXISTS Despesa (
		NR_CNPJ_PRESTADOR_CONTA TEXT NOT NULL,
		NR_CPF_CNPJ_FORNECEDOR TEXT NOT NULL,
		DT_PAGAMENTO TEXT NOT NULL CHECK (DT_PAGAMENTO GLOB '[0-9][0-9][0-9][0-9]-[0-1][0-9]-[0-3][0-9]'),
		VR_PAGAMENTO REAL,
		PRIMARY KEY (NR_CNPJ_PRESTADOR_CONTA, NR_CPF_CNPJ_FORNECEDOR, DT_PAGAMENTO),
		FOREIGN KEY (NR_CNPJ_PRESTADOR_CONTA) REFERENCES Prestador(NR_CNPJ_PRESTADOR_CONTA),
		FOREIGN KEY (NR_CPF_CNPJ_FORNECEDOR) REFERENCES Fornecedor(NR_CPF_CNPJ_FORNECEDOR)
	)`,
}

const ingestionRunsDDL = `CREATE TABLE IF NOT EXISTS ingestion_runs (
	id TEXT PRIMARY KEY,
	source_file TEXT NOT NULL,
	mode TEXT NOT NULL,
	trigger_type TEXT NOT NULL,
	status TEXT NOT NULL,
	failed_stage TEXT,
	error TEXT,
	rows_read INTEGER NOT NULL DEFAULT 0,
	malformed_rows INTEGER NOT NULL DEFAULT 0,
	skipped_rows INTEGER NOT NULL DEFAULT 0,
	local_count INTEGER NOT NULL DEFAULT 0,
	partido_count INTEGER NOT NULL DEFAULT 0,
	fornecedor_count INTEGER NOT NULL DEFAULT 0,
	prestador_count INTEGER NOT NULL DEFAULT 0,
	documento_count INTEGER NOT NULL DEFAULT 0,
	despesa_count INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL,
	finished_at DATETIME NOT NULL
)`

// ForeignKeyViolation is one row reported by PRAGMA foreign_key_check.
type ForeignKeyViolation struct {
	Table  string `db:"table" json:"table"`
	RowID  *int64 `db:"rowid" json:"rowid"`
	Parent string `db:"parent" json:"parent"`
	FKID   int64  `db:"fkid" json:"fkid"`
}

type SchemaStore struct {
	db *sqlx.DB
}

// Ensure creates the six entity tables and the run ledger when absent. It
// fails when the connection does not enforce foreign keys.
func (s *SchemaStore) Ensure(ctx context.Context) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var enabled int
	if err := conn.GetContext(ctx, &enabled, "PRAGMA foreign_keys"); err != nil {
		return fmt.Errorf("read foreign_keys pragma: %w", err)
	}
	if enabled != 1 {
		return ErrForeignKeysDisabled
	}

	for _, table := range LoadOrder {
		if _, err := conn.ExecContext(ctx, tableDDL[table]); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}

	if _, err := conn.ExecContext(ctx, ingestionRunsDDL); err != nil {
		return fmt.Errorf("create table ingestion_runs: %w", err)
	}
	return nil
}

// EnsureLedger creates only the run ledger. Failed runs are recorded through
// it without creating the entity tables.
func (s *SchemaStore) EnsureLedger(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ingestionRunsDDL); err != nil {
		return fmt.Errorf("create table ingestion_runs: %w", err)
	}
	return nil
}

// ForeignKeyCheck reports every row whose foreign key has no parent.
func (s *SchemaStore) ForeignKeyCheck(ctx context.Context) ([]ForeignKeyViolation, error) {
	var violations []ForeignKeyViolation
	if err := s.db.SelectContext(ctx, &violations, "PRAGMA foreign_key_check"); err != nil {
		return nil, err
	}
	return violations, nil
}

// Counts returns the row count of each entity table.
func (s *SchemaStore) Counts(ctx context.Context) (TableCounts, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM Local) AS local_count,
		(SELECT COUNT(*) FROM Partido) AS partido_count,
		(SELECT COUNT(*) FROM Fornecedor) AS fornecedor_count,
		(SELECT COUNT(*) FROM Prestador) AS prestador_count,
		(SELECT COUNT(*) FROM Documento) AS documento_count,
		(SELECT COUNT(*) FROM Despesa) AS despesa_count`

	var counts TableCounts
	err := s.db.GetContext(ctx, &counts, query)
	return counts, err
}

// Exists reports whether all six entity tables are present.
func (s *SchemaStore) Exists(ctx context.Context) (bool, error) {
	var n int
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN (?)`, LoadOrder)
	if err != nil {
		return false, err
	}
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), args...); err != nil {
		return false, err
	}
	return n == len(LoadOrder), nil
}
