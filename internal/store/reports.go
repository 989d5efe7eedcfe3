package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ReportsStore runs the read-only dashboard queries. Every join names its
// predicate explicitly.
type ReportsStore struct {
	db *sqlx.DB
}

// DefaultMinAmount is the payment threshold of PartySupplierPayments when
// none is given.
const DefaultMinAmount = 10000

// ReportFilter carries the optional parameters shared by the reports.
type ReportFilter struct {
	StartDate time.Time
	EndDate   time.Time
	UF        string
	Sphere    string
	MinAmount float64
	Limit     int
}

func (f ReportFilter) start() string { return f.StartDate.Format(time.DateOnly) }
func (f ReportFilter) end() string   { return f.EndDate.Format(time.DateOnly) }

type PartySupplierPayment struct {
	Partido    string  `db:"partido" json:"partido"`
	Fornecedor string  `db:"fornecedor" json:"fornecedor"`
	Valor      float64 `db:"valor" json:"valor"`
}

type FilerParty struct {
	Prestador    string `db:"prestador" json:"prestador"`
	Partido      string `db:"partido" json:"partido"`
	SiglaPartido string `db:"sigla_partido" json:"sigla_partido"`
}

type SupplierPayment struct {
	Fornecedor     string  `db:"fornecedor" json:"fornecedor"`
	TipoFornecedor string  `db:"tipo_fornecedor" json:"tipo_fornecedor"`
	Valor          float64 `db:"valor" json:"valor"`
	Data           string  `db:"data" json:"data"`
}

type SupplierTypeTotal struct {
	TipoFornecedor string  `db:"tipo_fornecedor" json:"tipo_fornecedor"`
	Total          float64 `db:"total" json:"total"`
}

type FilerMunicipality struct {
	Prestador string `db:"prestador" json:"prestador"`
	Municipio string `db:"municipio" json:"municipio"`
	UF        string `db:"uf" json:"uf"`
}

type PartyAverage struct {
	SiglaPartido string  `db:"sigla_partido" json:"sigla_partido"`
	Partido      string  `db:"partido" json:"partido"`
	MediaGastos  float64 `db:"media_gastos" json:"media_gastos"`
}

type ContractCount struct {
	Municipio    string `db:"municipio" json:"municipio"`
	SiglaPartido string `db:"sigla_partido" json:"sigla_partido"`
	Fornecedor   string `db:"fornecedor" json:"fornecedor"`
	Contratos    int64  `db:"contratos" json:"contratos"`
}

type SupplierTotal struct {
	Fornecedor string  `db:"fornecedor" json:"fornecedor"`
	Pagamentos int64   `db:"pagamentos" json:"pagamentos"`
	Total      float64 `db:"total" json:"total"`
}

type PartyTotal struct {
	Partido string  `db:"partido" json:"partido"`
	Total   float64 `db:"total" json:"total"`
}

type MunicipalityTotal struct {
	Municipio string  `db:"municipio" json:"municipio"`
	Total     float64 `db:"total" json:"total"`
}

// PartySupplierPayments lists payments above f.MinAmount made by filers of
// parties in sphere f.Sphere.
func (rs *ReportsStore) PartySupplierPayments(ctx context.Context, f ReportFilter) ([]PartySupplierPayment, error) {
	query := `
	SELECT
		COALESCE(p.NM_PARTIDO, '') AS partido,
		COALESCE(f.NM_FORNECEDOR, '') AS fornecedor,
		COALESCE(d.VR_PAGAMENTO, 0) AS valor
	FROM Despesa d
	JOIN Prestador pr ON pr.NR_CNPJ_PRESTADOR_CONTA = d.NR_CNPJ_PRESTADOR_CONTA
	JOIN Partido p ON p.SG_PARTIDO = pr.SG_PARTIDO
	JOIN Fornecedor f ON f.NR_CPF_CNPJ_FORNECEDOR = d.NR_CPF_CNPJ_FORNECEDOR
	WHERE p.DS_TP_ESFERA_PARTIDARIA = ?
		AND d.VR_PAGAMENTO > ?
	ORDER BY d.VR_PAGAMENTO DESC`

	result := []PartySupplierPayment{}
	err := rs.db.SelectContext(ctx, &result, query, f.Sphere, f.MinAmount)
	return result, err
}

// FilersByState lists filers registered in municipalities of state f.UF.
func (rs *ReportsStore) FilersByState(ctx context.Context, f ReportFilter) ([]FilerParty, error) {
	query := `
	SELECT
		pr.NR_CNPJ_PRESTADOR_CONTA AS prestador,
		COALESCE(p.NM_PARTIDO, '') AS partido,
		p.SG_PARTIDO AS sigla_partido
	FROM Prestador pr
	JOIN Partido p ON p.SG_PARTIDO = pr.SG_PARTIDO
	JOIN Local l ON l.CD_MUNICIPIO = pr.CD_MUNICIPIO
	WHERE l.SG_UF = ?
	ORDER BY p.NM_PARTIDO, pr.NR_CNPJ_PRESTADOR_CONTA`

	result := []FilerParty{}
	err := rs.db.SelectContext(ctx, &result, query, f.UF)
	return result, err
}

// SupplierPayments lists every payment with its supplier, largest first.
func (rs *ReportsStore) SupplierPayments(ctx context.Context, f ReportFilter) ([]SupplierPayment, error) {
	query := `
	SELECT
		COALESCE(f.NM_FORNECEDOR, '') AS fornecedor,
		COALESCE(f.DS_TP_FORNECEDOR, '') AS tipo_fornecedor,
		COALESCE(d.VR_PAGAMENTO, 0) AS valor,
		d.DT_PAGAMENTO AS data
	FROM Fornecedor f
	JOIN Despesa d ON d.NR_CPF_CNPJ_FORNECEDOR = f.NR_CPF_CNPJ_FORNECEDOR
	ORDER BY d.VR_PAGAMENTO DESC
	LIMIT ?`

	result := []SupplierPayment{}
	err := rs.db.SelectContext(ctx, &result, query, limitOrAll(f.Limit))
	return result, err
}

// SupplierTypeTotals sums payments per supplier type.
func (rs *ReportsStore) SupplierTypeTotals(ctx context.Context) ([]SupplierTypeTotal, error) {
	query := `
	SELECT
		COALESCE(f.DS_TP_FORNECEDOR, '') AS tipo_fornecedor,
		COALESCE(SUM(d.VR_PAGAMENTO), 0) AS total
	FROM Fornecedor f
	JOIN Despesa d ON d.NR_CPF_CNPJ_FORNECEDOR = f.NR_CPF_CNPJ_FORNECEDOR
	GROUP BY f.DS_TP_FORNECEDOR
	ORDER BY total DESC`

	result := []SupplierTypeTotal{}
	err := rs.db.SelectContext(ctx, &result, query)
	return result, err
}

// FilersByParty lists every filer with its party.
func (rs *ReportsStore) FilersByParty(ctx context.Context) ([]FilerParty, error) {
	query := `
	SELECT
		pr.NR_CNPJ_PRESTADOR_CONTA AS prestador,
		COALESCE(p.NM_PARTIDO, '') AS partido,
		p.SG_PARTIDO AS sigla_partido
	FROM Prestador pr
	JOIN Partido p ON p.SG_PARTIDO = pr.SG_PARTIDO
	ORDER BY p.NM_PARTIDO, pr.NR_CNPJ_PRESTADOR_CONTA`

	result := []FilerParty{}
	err := rs.db.SelectContext(ctx, &result, query)
	return result, err
}

// FilersByMunicipality lists every filer with its municipality.
func (rs *ReportsStore) FilersByMunicipality(ctx context.Context) ([]FilerMunicipality, error) {
	query := `
	SELECT
		pr.NR_CNPJ_PRESTADOR_CONTA AS prestador,
		COALESCE(l.NM_MUNICIPIO, '') AS municipio,
		COALESCE(l.SG_UF, '') AS uf
	FROM Prestador pr
	JOIN Local l ON l.CD_MUNICIPIO = pr.CD_MUNICIPIO
	ORDER BY l.NM_MUNICIPIO, pr.NR_CNPJ_PRESTADOR_CONTA`

	result := []FilerMunicipality{}
	err := rs.db.SelectContext(ctx, &result, query)
	return result, err
}

// AverageSpendByParty averages payment amounts per party.
func (rs *ReportsStore) AverageSpendByParty(ctx context.Context) ([]PartyAverage, error) {
	query := `
	SELECT
		pt.SG_PARTIDO AS sigla_partido,
		COALESCE(pt.NM_PARTIDO, '') AS partido,
		COALESCE(AVG(d.VR_PAGAMENTO), 0) AS media_gastos
	FROM Despesa d
	JOIN Prestador p ON p.NR_CNPJ_PRESTADOR_CONTA = d.NR_CNPJ_PRESTADOR_CONTA
	JOIN Partido pt ON pt.SG_PARTIDO = p.SG_PARTIDO
	GROUP BY pt.SG_PARTIDO, pt.NM_PARTIDO
	ORDER BY media_gastos DESC`

	result := []PartyAverage{}
	err := rs.db.SelectContext(ctx, &result, query)
	return result, err
}

// ContractsByMunicipality counts payments per municipality, party and
// supplier.
func (rs *ReportsStore) ContractsByMunicipality(ctx context.Context, f ReportFilter) ([]ContractCount, error) {
	query := `
	SELECT
		COALESCE(l.NM_MUNICIPIO, '') AS municipio,
		COALESCE(p.SG_PARTIDO, '') AS sigla_partido,
		COALESCE(f.NM_FORNECEDOR, '') AS fornecedor,
		COUNT(d.NR_CPF_CNPJ_FORNECEDOR) AS contratos
	FROM Despesa d
	JOIN Prestador p ON p.NR_CNPJ_PRESTADOR_CONTA = d.NR_CNPJ_PRESTADOR_CONTA
	JOIN Fornecedor f ON f.NR_CPF_CNPJ_FORNECEDOR = d.NR_CPF_CNPJ_FORNECEDOR
	JOIN Local l ON l.CD_MUNICIPIO = p.CD_MUNICIPIO
	GROUP BY l.NM_MUNICIPIO, p.SG_PARTIDO, f.NM_FORNECEDOR
	ORDER BY contratos DESC, municipio, sigla_partido, fornecedor
	LIMIT ?`

	result := []ContractCount{}
	err := rs.db.SelectContext(ctx, &result, query, limitOrAll(f.Limit))
	return result, err
}

// SupplierTotals sums payments per supplier within the date range.
func (rs *ReportsStore) SupplierTotals(ctx context.Context, f ReportFilter) ([]SupplierTotal, error) {
	query := `
	SELECT
		COALESCE(f.NM_FORNECEDOR, '') AS fornecedor,
		COUNT(d.NR_CPF_CNPJ_FORNECEDOR) AS pagamentos,
		COALESCE(SUM(d.VR_PAGAMENTO), 0) AS total
	FROM Despesa d
	JOIN Fornecedor f ON f.NR_CPF_CNPJ_FORNECEDOR = d.NR_CPF_CNPJ_FORNECEDOR
	WHERE d.DT_PAGAMENTO BETWEEN ? AND ?
	GROUP BY f.NM_FORNECEDOR
	ORDER BY total DESC
	LIMIT ?`

	result := []SupplierTotal{}
	err := rs.db.SelectContext(ctx, &result, query, f.start(), f.end(), limitOrAll(f.Limit))
	return result, err
}

// PartyTotals sums payments per party within the date range, restricted to
// filers of state f.UF when it is set.
func (rs *ReportsStore) PartyTotals(ctx context.Context, f ReportFilter) ([]PartyTotal, error) {
	query := `
	SELECT
		COALESCE(pt.NM_PARTIDO, '') AS partido,
		COALESCE(SUM(d.VR_PAGAMENTO), 0) AS total
	FROM Despesa d
	JOIN Prestador p ON p.NR_CNPJ_PRESTADOR_CONTA = d.NR_CNPJ_PRESTADOR_CONTA
	JOIN Partido pt ON pt.SG_PARTIDO = p.SG_PARTIDO
	LEFT JOIN Local l ON l.CD_MUNICIPIO = p.CD_MUNICIPIO
	WHERE d.DT_PAGAMENTO BETWEEN ? AND ?
		AND (? = '' OR l.SG_UF = ?)
	GROUP BY pt.NM_PARTIDO
	ORDER BY total DESC`

	result := []PartyTotal{}
	err := rs.db.SelectContext(ctx, &result, query, f.start(), f.end(), f.UF, f.UF)
	return result, err
}

// TopMunicipalities returns the f.Limit municipalities with the largest total
// spend within the date range.
func (rs *ReportsStore) TopMunicipalities(ctx context.Context, f ReportFilter) ([]MunicipalityTotal, error) {
	query := `
	SELECT
		COALESCE(l.NM_MUNICIPIO, '') AS municipio,
		COALESCE(SUM(d.VR_PAGAMENTO), 0) AS total
	FROM Despesa d
	JOIN Prestador p ON p.NR_CNPJ_PRESTADOR_CONTA = d.NR_CNPJ_PRESTADOR_CONTA
	JOIN Local l ON l.CD_MUNICIPIO = p.CD_MUNICIPIO
	WHERE d.DT_PAGAMENTO BETWEEN ? AND ?
	GROUP BY l.NM_MUNICIPIO
	ORDER BY total DESC
	LIMIT ?`

	limit := f.Limit
	if limit <= 0 {
		limit = 5
	}

	result := []MunicipalityTotal{}
	err := rs.db.SelectContext(ctx, &result, query, f.start(), f.end(), limit)
	return result, err
}

// TablePage is a slice of a table with its total row count.
type TablePage struct {
	Table string           `json:"table"`
	Total int64            `json:"total"`
	Rows  []map[string]any `json:"rows"`
}

// ExploreTable returns the first limit rows of one of the six entity tables.
func (rs *ReportsStore) ExploreTable(ctx context.Context, table string, limit int) (*TablePage, error) {
	if !isEntityTable(table) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	page := &TablePage{Table: table, Rows: []map[string]any{}}
	if err := rs.db.GetContext(ctx, &page.Total, "SELECT COUNT(*) FROM "+table); err != nil {
		return nil, err
	}

	rows, err := rs.db.QueryxContext(ctx, "SELECT * FROM "+table+" LIMIT ?", limitOrAll(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = string(b)
			}
		}
		page.Rows = append(page.Rows, m)
	}
	return page, rows.Err()
}

func isEntityTable(table string) bool {
	for _, t := range LoadOrder {
		if t == table {
			return true
		}
	}
	return false
}

// limitOrAll maps a non-positive limit to SQLite's "no limit".
func limitOrAll(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
