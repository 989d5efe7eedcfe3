package normalize

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/farxc/prestacao-contas/internal/campaign/types"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1234,56", want: "1234.56"},
		{in: "1.234,56", want: "1234.56"},
		{in: " 1000 ", want: "1000"},
		{in: "12.5", want: "12.5"},
		{in: "0,01", want: "0.01"},
		{in: "abc", wantErr: true},
		{in: "-12.345,6", want: "-12345.6"},
		{in: "1.234", want: "1.234"},
		{in: "1,2,3", wantErr: true},
		{in: "1,234.56", wantErr: true},
		{in: "12.34,5", wantErr: true},
		{in: "1e3", wantErr: true},
		{in: ",5", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) error = %v", tt.in, err)
			continue
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "05/03/2024", want: "2024-03-05"},
		{in: "5/3/2024", want: "2024-03-05"},
		{in: " 29/02/2024 ", want: "2024-02-29"},
		{in: "31/02/2024", wantErr: true},
		{in: "2024-03-05", wantErr: true},
		{in: "13/13/2024", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDate(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func TestRecord(t *testing.T) {
	raw := types.RawExpense{
		Line:        7,
		CdMunicipio: sql.NullInt64{Int64: -1, Valid: true},
		DtPagamento: str("31/02/2024"),
		VrPagamento: str("1.000,50"),
	}

	exp, errs := Record(raw)
	if exp.CdMunicipio.Valid {
		t.Errorf("CdMunicipio = %d, want absent", exp.CdMunicipio.Int64)
	}
	if exp.DtPagamento.Valid {
		t.Errorf("DtPagamento = %q, want absent", exp.DtPagamento.String)
	}
	if !exp.VrPagamento.Valid || !exp.VrPagamento.Decimal.Equal(decimal.RequireFromString("1000.5")) {
		t.Errorf("VrPagamento = %v, want 1000.5", exp.VrPagamento)
	}
	if len(errs) != 1 || errs[0].Column != types.DtPagamento || errs[0].Line != 7 {
		t.Errorf("errs = %v, want one DT_PAGAMENTO error at line 7", errs)
	}
}

func TestNormalize_AmountPolicy(t *testing.T) {
	raw := []types.RawExpense{
		{Line: 2, VrPagamento: str("10,00"), DtPagamento: str("01/01/2024")},
		{Line: 3, VrPagamento: str("dez reais"), DtPagamento: str("02/01/2024")},
		{Line: 4, VrPagamento: str("30"), DtPagamento: str("99/01/2024")},
	}

	t.Run("fail", func(t *testing.T) {
		_, err := NewNormalizer(AmountPolicyFail, logger.Discard()).Normalize(raw)
		var ce *FieldCoercionError
		if !errors.As(err, &ce) {
			t.Fatalf("Normalize() error = %v, want *FieldCoercionError", err)
		}
		if ce.Line != 3 || ce.Column != types.VrPagamento || ce.Value != "dez reais" {
			t.Errorf("error = %+v, want line 3 VR_PAGAMENTO", ce)
		}
	})

	t.Run("skip", func(t *testing.T) {
		res, err := NewNormalizer(AmountPolicySkip, logger.Discard()).Normalize(raw)
		if err != nil {
			t.Fatalf("Normalize() error = %v", err)
		}
		if len(res.Expenses) != 2 || res.Expenses[0].Line != 2 || res.Expenses[1].Line != 4 {
			t.Errorf("Expenses = %+v, want lines 2 and 4", res.Expenses)
		}
		if len(res.Skipped) != 1 || res.InvalidDates != 1 {
			t.Errorf("Skipped = %d InvalidDates = %d, want 1 and 1", len(res.Skipped), res.InvalidDates)
		}
	})
}
