package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/farxc/prestacao-contas/internal/campaign/types"
	"github.com/farxc/prestacao-contas/internal/campaign/utils"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/charmap"
)

const header = "ANO_ELEICAO;CD_MUNICIPIO;NM_MUNICIPIO;SG_UF;SG_PARTIDO;NM_PARTIDO;DS_TP_ESFERA_PARTIDARIA;NR_CPF_CNPJ_FORNECEDOR;NM_FORNECEDOR;DS_TP_FORNECEDOR;NR_CNPJ_PRESTADOR_CONTA;NR_DOCUMENTO;CD_TP_DOCUMENTO;DS_TP_DOCUMENTO;DT_PAGAMENTO;VR_PAGAMENTO"

func writeLatin1(t *testing.T, lines ...string) string {
	t.Helper()

	encoded, err := charmap.ISO8859_1.NewEncoder().String(strings.Join(lines, "\n") + "\n")
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "despesas.csv")
	if err := os.WriteFile(path, []byte(encoded), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestReadFrame(t *testing.T) {
	path := writeLatin1(t,
		header,
		`2024;3550308;SÃO PAULO;SP;PT;#NULO#;Nacional;00123456000190;Gráfica Alfa;Pessoa Jurídica;11111111000111;NF-1;#NULO#;Nota Fiscal;05/03/2024;1.234,56`,
		`2024;3304557;RIO DE JANEIRO;RJ`,
		`2024; 3304557 ;RIO DE JANEIRO;RJ;PV;Partido Verde;Estadual;12345678909;João;Pessoa Física;22222222000122;REC-9;2;Recibo;;1000`,
	)

	frame, err := ReadFrame(path)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}

	if diff := cmp.Diff([]int{2, 4}, frame.Lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	if len(frame.Malformed) != 1 || frame.Malformed[0].Line != 3 {
		t.Fatalf("Malformed = %v, want one entry at line 3", frame.Malformed)
	}
	if !errors.Is(frame.Malformed[0], errFieldCount) {
		t.Errorf("Malformed[0] = %v, want field count error", frame.Malformed[0])
	}
	if got := frame.RowsRead(); got != 3 {
		t.Errorf("RowsRead() = %d, want 3", got)
	}
	if diff := cmp.Diff(types.RequiredColumns, frame.DataFrame.Names()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	df := &frame.DataFrame
	if got := utils.GetStr(types.NmMunicipio, 0, df); got.String != "SÃO PAULO" {
		t.Errorf("NM_MUNICIPIO = %q, want SÃO PAULO", got.String)
	}
	if got := utils.GetStr(types.NrCpfCnpjFornecedor, 0, df); got.String != "00123456000190" {
		t.Errorf("NR_CPF_CNPJ_FORNECEDOR = %q, want leading zeros kept", got.String)
	}
	if got := utils.GetStr(types.NmPartido, 0, df); got.Valid {
		t.Errorf("NM_PARTIDO = %q, want absent for #NULO#", got.String)
	}
	if got := utils.GetInt(types.CdTpDocumento, 0, df); got.Valid {
		t.Errorf("CD_TP_DOCUMENTO = %d, want absent for #NULO#", got.Int64)
	}
	if got := utils.GetInt(types.CdMunicipio, 1, df); !got.Valid || got.Int64 != 3304557 {
		t.Errorf("CD_MUNICIPIO = %+v, want 3304557", got)
	}
	if got := utils.GetStr(types.DtPagamento, 1, df); got.Valid {
		t.Errorf("DT_PAGAMENTO = %q, want absent for empty field", got.String)
	}
}

func TestReadFrame_Errors(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		missing bool
		want    error
	}{
		{name: "missing file", missing: true, want: ErrSourceUnavailable},
		{name: "header only", lines: []string{header}, want: ErrEmptySource},
		{name: "only malformed rows", lines: []string{header, "1;2;3"}, want: ErrEmptySource},
		{name: "missing column", lines: []string{"CD_MUNICIPIO;NM_MUNICIPIO", "1;A"}, want: ErrMissingColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "absent.csv")
			if !tt.missing {
				path = writeLatin1(t, tt.lines...)
			}

			_, err := ReadFrame(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReader_Next(t *testing.T) {
	src := strings.Join([]string{
		"VR_PAGAMENTO;" + strings.Join(types.RequiredColumns[:14], ";"),
		"10;" + strings.Repeat("x;", 13) + "05/03/2024",
		"bad",
	}, "\n")

	r, err := NewReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	row, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if row.Line != 2 {
		t.Errorf("Line = %d, want 2", row.Line)
	}
	if got := row.Fields[len(row.Fields)-1]; got != "10" {
		t.Errorf("VR_PAGAMENTO = %q, want 10 regardless of column order", got)
	}

	var me *MalformedRowError
	if _, err := r.Next(); !errors.As(err, &me) || me.Line != 3 {
		t.Errorf("Next() error = %v, want MalformedRowError at line 3", err)
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}
