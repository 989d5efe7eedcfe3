package store

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Local is a municipality.
type Local struct {
	CdMunicipio int64          `db:"CD_MUNICIPIO"`
	NmMunicipio sql.NullString `db:"NM_MUNICIPIO"`
	SgUF        sql.NullString `db:"SG_UF"`
}

// Partido is a political party.
type Partido struct {
	SgPartido            string         `db:"SG_PARTIDO"`
	NmPartido            sql.NullString `db:"NM_PARTIDO"`
	DsTpEsferaPartidaria sql.NullString `db:"DS_TP_ESFERA_PARTIDARIA"`
}

// Fornecedor is the payee of an expense. The tax id is kept as text so
// leading zeros and mixed CPF/CNPJ lengths survive.
type Fornecedor struct {
	NrCpfCnpjFornecedor string         `db:"NR_CPF_CNPJ_FORNECEDOR"`
	NmFornecedor        sql.NullString `db:"NM_FORNECEDOR"`
	DsTpFornecedor      sql.NullString `db:"DS_TP_FORNECEDOR"`
}

// Prestador is the accountable filer that reports payments.
type Prestador struct {
	NrCnpjPrestadorConta string         `db:"NR_CNPJ_PRESTADOR_CONTA"`
	CdMunicipio          sql.NullInt64  `db:"CD_MUNICIPIO"`
	SgPartido            sql.NullString `db:"SG_PARTIDO"`
}

// Documento is a supporting document of a filer.
type Documento struct {
	NrCnpjPrestadorConta string         `db:"NR_CNPJ_PRESTADOR_CONTA"`
	NrDocumento          string         `db:"NR_DOCUMENTO"`
	CdTpDocumento        sql.NullInt64  `db:"CD_TP_DOCUMENTO"`
	DsTpDocumento        sql.NullString `db:"DS_TP_DOCUMENTO"`
}

// Despesa is a payment from a filer to a supplier. DtPagamento is an ISO
// YYYY-MM-DD date.
type Despesa struct {
	NrCnpjPrestadorConta string              `db:"NR_CNPJ_PRESTADOR_CONTA"`
	NrCpfCnpjFornecedor  string              `db:"NR_CPF_CNPJ_FORNECEDOR"`
	DtPagamento          string              `db:"DT_PAGAMENTO"`
	VrPagamento          decimal.NullDecimal `db:"VR_PAGAMENTO"`
}

// Entities holds the six normalized entity sets produced by one run.
type Entities struct {
	Locais       []Local
	Partidos     []Partido
	Fornecedores []Fornecedor
	Prestadores  []Prestador
	Documentos   []Documento
	Despesas     []Despesa
}

// Counts returns the number of rows per table.
func (e *Entities) Counts() TableCounts {
	return TableCounts{
		Local:      int64(len(e.Locais)),
		Partido:    int64(len(e.Partidos)),
		Fornecedor: int64(len(e.Fornecedores)),
		Prestador:  int64(len(e.Prestadores)),
		Documento:  int64(len(e.Documentos)),
		Despesa:    int64(len(e.Despesas)),
	}
}

type TableCounts struct {
	Local      int64 `db:"local_count" json:"local"`
	Partido    int64 `db:"partido_count" json:"partido"`
	Fornecedor int64 `db:"fornecedor_count" json:"fornecedor"`
	Prestador  int64 `db:"prestador_count" json:"prestador"`
	Documento  int64 `db:"documento_count" json:"documento"`
	Despesa    int64 `db:"despesa_count" json:"despesa"`
}

// Total is the sum of all table counts.
func (c TableCounts) Total() int64 {
	return c.Local + c.Partido + c.Fornecedor + c.Prestador + c.Documento + c.Despesa
}

// IngestionRun is one entry of the run ledger.
type IngestionRun struct {
	ID            string  `db:"id" json:"id"`
	SourceFile    string  `db:"source_file" json:"source_file"`
	Mode          string  `db:"mode" json:"mode"`
	TriggerType   string  `db:"trigger_type" json:"trigger_type"`
	Status        string  `db:"status" json:"status"`
	FailedStage   *string `db:"failed_stage" json:"failed_stage,omitempty"`
	Error         *string `db:"error" json:"error,omitempty"`
	RowsRead      int64   `db:"rows_read" json:"rows_read"`
	MalformedRows int64   `db:"malformed_rows" json:"malformed_rows"`
	SkippedRows   int64   `db:"skipped_rows" json:"skipped_rows"`
	TableCounts
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}
