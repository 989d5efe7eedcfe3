package types

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Source columns read from the TSE extract.
const (
	CdMunicipio          = "CD_MUNICIPIO"
	NmMunicipio          = "NM_MUNICIPIO"
	SgUF                 = "SG_UF"
	SgPartido            = "SG_PARTIDO"
	NmPartido            = "NM_PARTIDO"
	DsTpEsferaPartidaria = "DS_TP_ESFERA_PARTIDARIA"
	NrCpfCnpjFornecedor  = "NR_CPF_CNPJ_FORNECEDOR"
	NmFornecedor         = "NM_FORNECEDOR"
	DsTpFornecedor       = "DS_TP_FORNECEDOR"
	NrCnpjPrestadorConta = "NR_CNPJ_PRESTADOR_CONTA"
	NrDocumento          = "NR_DOCUMENTO"
	CdTpDocumento        = "CD_TP_DOCUMENTO"
	DsTpDocumento        = "DS_TP_DOCUMENTO"
	DtPagamento          = "DT_PAGAMENTO"
	VrPagamento          = "VR_PAGAMENTO"
)

// RequiredColumns is the projection kept from the source file, in frame order.
var RequiredColumns = []string{
	CdMunicipio,
	NmMunicipio,
	SgUF,
	SgPartido,
	NmPartido,
	DsTpEsferaPartidaria,
	NrCpfCnpjFornecedor,
	NmFornecedor,
	DsTpFornecedor,
	NrCnpjPrestadorConta,
	NrDocumento,
	CdTpDocumento,
	DsTpDocumento,
	DtPagamento,
	VrPagamento,
}

// IntColumns are typed as integers; every other column stays text.
var IntColumns = []string{CdMunicipio, CdTpDocumento}

// NullSentinel marks an absent value in the source.
const NullSentinel = "#NULO#"

// RawExpense is one source row as read. Line is the 1-based line of the row
// in the source file.
type RawExpense struct {
	Line                 int
	CdMunicipio          sql.NullInt64
	NmMunicipio          sql.NullString
	SgUF                 sql.NullString
	SgPartido            sql.NullString
	NmPartido            sql.NullString
	DsTpEsferaPartidaria sql.NullString
	NrCpfCnpjFornecedor  sql.NullString
	NmFornecedor         sql.NullString
	DsTpFornecedor       sql.NullString
	NrCnpjPrestadorConta sql.NullString
	NrDocumento          sql.NullString
	CdTpDocumento        sql.NullInt64
	DsTpDocumento        sql.NullString
	DtPagamento          sql.NullString
	VrPagamento          sql.NullString
}

// Expense is a normalized row: the municipality sentinel removed, the date
// in ISO form and the amount parsed.
type Expense struct {
	Line                 int
	CdMunicipio          sql.NullInt64
	NmMunicipio          sql.NullString
	SgUF                 sql.NullString
	SgPartido            sql.NullString
	NmPartido            sql.NullString
	DsTpEsferaPartidaria sql.NullString
	NrCpfCnpjFornecedor  sql.NullString
	NmFornecedor         sql.NullString
	DsTpFornecedor       sql.NullString
	NrCnpjPrestadorConta sql.NullString
	NrDocumento          sql.NullString
	CdTpDocumento        sql.NullInt64
	DsTpDocumento        sql.NullString
	DtPagamento          sql.NullString
	VrPagamento          decimal.NullDecimal
}
