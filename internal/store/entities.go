package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type EntityStore struct {
	db *sqlx.DB
}

var insertQueries = map[string]string{
	TableLocal: `INSERT INTO Local (
		CD_MUNICIPIO,
		NM_MUNICIPIO,
		SG_UF
	) VALUES (
		:CD_MUNICIPIO,
		:NM_MUNICIPIO,
		:SG_UF
	)`,
	TablePartido: `INSERT INTO Partido (
		SG_PARTIDO,
		NM_PARTIDO,
		DS_TP_ESFERA_PARTIDARIA
	) VALUES (
		:SG_PARTIDO,
		:NM_PARTIDO,
		:DS_TP_ESFERA_PARTIDARIA
	)`,
	TableFornecedor: `INSERT INTO Fornecedor (
		NR_CPF_CNPJ_FORNECEDOR,
		NM_FORNECEDOR,
		DS_TP_FORNECEDOR
	) VALUES (
		:NR_CPF_CNPJ_FORNECEDOR,
		:NM_FORNECEDOR,
		:DS_TP_FORNECEDOR
	)`,
	TablePrestador: `INSERT INTO Prestador (
		NR_CNPJ_PRESTADOR_CONTA,
		CD_MUNICIPIO,
		SG_PARTIDO
	) VALUES (
		:NR_CNPJ_PRESTADOR_CONTA,
		:CD_MUNICIPIO,
		:SG_PARTIDO
	)`,
	TableDocumento: `INSERT INTO Documento (
		NR_CNPJ_PRESTADOR_CONTA,
		NR_DOCUMENTO,
		CD_TP_DOCUMENTO,
		DS_TP_DOCUMENTO
	) VALUES (
		:NR_CNPJ_PRESTADOR_CONTA,
		:NR_DOCUMENTO,
		:CD_TP_DOCUMENTO,
		:DS_TP_DOCUMENTO
	)`,
	TableDespesa: `INSERT INTO Despesa (
		NR_CNPJ_PRESTADOR_CONTA,
		NR_CPF_CNPJ_FORNECEDOR,
		DT_PAGAMENTO,
		VR_PAGAMENTO
	) VALUES (
		:NR_CNPJ_PRESTADOR_CONTA,
		:NR_CPF_CNPJ_FORNECEDOR,
		:DT_PAGAMENTO,
		:VR_PAGAMENTO
	)`,
}

// row is one insertable entity together with its printable key.
type row struct {
	key string
	arg interface{}
}

func tableRows(e *Entities, table string) []row {
	var rows []row
	switch table {
	case TableLocal:
		for i := range e.Locais {
			rows = append(rows, row{fmt.Sprintf("%d", e.Locais[i].CdMunicipio), &e.Locais[i]})
		}
	case TablePartido:
		for i := range e.Partidos {
			rows = append(rows, row{e.Partidos[i].SgPartido, &e.Partidos[i]})
		}
	case TableFornecedor:
		for i := range e.Fornecedores {
			rows = append(rows, row{e.Fornecedores[i].NrCpfCnpjFornecedor, &e.Fornecedores[i]})
		}
	case TablePrestador:
		for i := range e.Prestadores {
			rows = append(rows, row{e.Prestadores[i].NrCnpjPrestadorConta, &e.Prestadores[i]})
		}
	case TableDocumento:
		for i := range e.Documentos {
			d := &e.Documentos[i]
			rows = append(rows, row{d.NrCnpjPrestadorConta + "/" + d.NrDocumento, d})
		}
	case TableDespesa:
		for i := range e.Despesas {
			d := &e.Despesas[i]
			rows = append(rows, row{strings.Join([]string{d.NrCnpjPrestadorConta, d.NrCpfCnpjFornecedor, d.DtPagamento}, "/"), d})
		}
	}
	return rows
}

// ReplaceAll swaps the contents of the six tables for e in one transaction
// and records run in the ledger as part of it. Readers see either the
// previous contents or the new ones. Constraint failures are returned as
// *IntegrityViolation and nothing is written.
func (es *EntityStore) ReplaceAll(ctx context.Context, e *Entities, run *IngestionRun) error {
	tx, err := es.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load transaction: %w", err)
	}
	defer tx.Rollback()

	for i := len(LoadOrder) - 1; i >= 0; i-- {
		table := LoadOrder[i]
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear table %s: %w", table, err)
		}
	}

	for _, table := range LoadOrder {
		if err := insertTable(ctx, tx, table, tableRows(e, table)); err != nil {
			return err
		}
	}

	if run != nil {
		if err := insertRun(ctx, tx, run); err != nil {
			return fmt.Errorf("record ingestion run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load transaction: %w", err)
	}
	return nil
}

func insertTable(ctx context.Context, tx *sqlx.Tx, table string, rows []row) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.PrepareNamedContext(ctx, insertQueries[table])
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, r.arg); err != nil {
			if kind, ok := constraintKind(err); ok {
				return &IntegrityViolation{Table: table, Key: r.key, Constraint: kind, Err: err}
			}
			return fmt.Errorf("insert into %s (key %s): %w", table, r.key, err)
		}
	}
	return nil
}

// Load reads the six tables back, each ordered by its primary key.
func (es *EntityStore) Load(ctx context.Context) (*Entities, error) {
	e := &Entities{}

	queries := []struct {
		dest  interface{}
		query string
	}{
		{&e.Locais, `SELECT CD_MUNICIPIO, NM_MUNICIPIO, SG_UF FROM Local ORDER BY CD_MUNICIPIO`},
		{&e.Partidos, `SELECT SG_PARTIDO, NM_PARTIDO, DS_TP_ESFERA_PARTIDARIA FROM Partido ORDER BY SG_PARTIDO`},
		{&e.Fornecedores, `SELECT NR_CPF_CNPJ_FORNECEDOR, NM_FORNECEDOR, DS_TP_FORNECEDOR FROM Fornecedor ORDER BY NR_CPF_CNPJ_FORNECEDOR`},
		{&e.Prestadores, `SELECT NR_CNPJ_PRESTADOR_CONTA, CD_MUNICIPIO, SG_PARTIDO FROM Prestador ORDER BY NR_CNPJ_PRESTADOR_CONTA`},
		{&e.Documentos, `SELECT NR_CNPJ_PRESTADOR_CONTA, NR_DOCUMENTO, CD_TP_DOCUMENTO, DS_TP_DOCUMENTO FROM Documento ORDER BY NR_CNPJ_PRESTADOR_CONTA, NR_DOCUMENTO`},
		{&e.Despesas, `SELECT NR_CNPJ_PRESTADOR_CONTA, NR_CPF_CNPJ_FORNECEDOR, DT_PAGAMENTO, VR_PAGAMENTO FROM Despesa ORDER BY NR_CNPJ_PRESTADOR_CONTA, NR_CPF_CNPJ_FORNECEDOR, DT_PAGAMENTO`},
	}

	for _, q := range queries {
		if err := es.db.SelectContext(ctx, q.dest, q.query); err != nil {
			return nil, err
		}
	}
	return e, nil
}
