package converter

import (
	"github.com/farxc/prestacao-contas/internal/campaign/files"
	"github.com/farxc/prestacao-contas/internal/campaign/types"
	"github.com/farxc/prestacao-contas/internal/campaign/utils"
	"github.com/go-gota/gota/dataframe"
)

func DfRowToRawExpense(df dataframe.DataFrame, rowIdx int) types.RawExpense {
	return types.RawExpense{
		CdMunicipio:          utils.GetInt(types.CdMunicipio, rowIdx, &df),
		NmMunicipio:          utils.GetStr(types.NmMunicipio, rowIdx, &df),
		SgUF:                 utils.GetStr(types.SgUF, rowIdx, &df),
		SgPartido:            utils.GetStr(types.SgPartido, rowIdx, &df),
		NmPartido:            utils.GetStr(types.NmPartido, rowIdx, &df),
		DsTpEsferaPartidaria: utils.GetStr(types.DsTpEsferaPartidaria, rowIdx, &df),
		NrCpfCnpjFornecedor:  utils.GetStr(types.NrCpfCnpjFornecedor, rowIdx, &df),
		NmFornecedor:         utils.GetStr(types.NmFornecedor, rowIdx, &df),
		DsTpFornecedor:       utils.GetStr(types.DsTpFornecedor, rowIdx, &df),
		NrCnpjPrestadorConta: utils.GetStr(types.NrCnpjPrestadorConta, rowIdx, &df),
		NrDocumento:          utils.GetStr(types.NrDocumento, rowIdx, &df),
		CdTpDocumento:        utils.GetInt(types.CdTpDocumento, rowIdx, &df),
		DsTpDocumento:        utils.GetStr(types.DsTpDocumento, rowIdx, &df),
		DtPagamento:          utils.GetStr(types.DtPagamento, rowIdx, &df),
		VrPagamento:          utils.GetStr(types.VrPagamento, rowIdx, &df),
	}
}

// FrameToRawExpenses converts every frame row, tagging each with its source
// line.
func FrameToRawExpenses(frame *files.Frame) []types.RawExpense {
	n := frame.DataFrame.Nrow()
	raw := make([]types.RawExpense, 0, n)
	for i := 0; i < n; i++ {
		r := DfRowToRawExpense(frame.DataFrame, i)
		if i < len(frame.Lines) {
			r.Line = frame.Lines[i]
		}
		raw = append(raw, r)
	}
	return raw
}
