package normalize

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/farxc/prestacao-contas/internal/campaign/types"
	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/shopspring/decimal"
)

// AmountPolicy decides what happens to a record whose amount cannot be parsed.
type AmountPolicy string

const (
	AmountPolicyFail AmountPolicy = "fail"
	AmountPolicySkip AmountPolicy = "skip"
)

// MunicipalityAbsent is the source's stand-in for an unknown municipality.
const MunicipalityAbsent = -1

const sourceDateLayout = "2/1/2006"

var (
	commaAmount = regexp.MustCompile(`^-?(\d{1,3}(\.\d{3})*|\d+),\d+$`)
	plainAmount = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// FieldCoercionError reports a value that could not be converted.
type FieldCoercionError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *FieldCoercionError) Error() string {
	return fmt.Sprintf("line %d: cannot convert %s value %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *FieldCoercionError) Unwrap() error {
	return e.Err
}

// ParseAmount parses a payment amount. When s contains a comma, dots are
// thousands separators and the comma is the decimal mark ("1.234,56");
// otherwise s is read as a plain decimal ("1000", "12.5"). Any other shape,
// such as "1,234.56" or "1e3", is ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	switch {
	case commaAmount.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case plainAmount.MatchString(s):
	default:
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d, nil
}

// ParseDate converts a D/M/YYYY date to YYYY-MM-DD.
func ParseDate(s string) (string, error) {
	t, err := time.Parse(sourceDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return t.Format(time.DateOnly), nil
}

// Record normalizes one row. Coercion failures are returned next to the
// expense, whose offending field is left absent.
func Record(raw types.RawExpense) (types.Expense, []*FieldCoercionError) {
	exp := types.Expense{
		Line:                 raw.Line,
		CdMunicipio:          raw.CdMunicipio,
		NmMunicipio:          raw.NmMunicipio,
		SgUF:                 raw.SgUF,
		SgPartido:            raw.SgPartido,
		NmPartido:            raw.NmPartido,
		DsTpEsferaPartidaria: raw.DsTpEsferaPartidaria,
		NrCpfCnpjFornecedor:  raw.NrCpfCnpjFornecedor,
		NmFornecedor:         raw.NmFornecedor,
		DsTpFornecedor:       raw.DsTpFornecedor,
		NrCnpjPrestadorConta: raw.NrCnpjPrestadorConta,
		NrDocumento:          raw.NrDocumento,
		CdTpDocumento:        raw.CdTpDocumento,
		DsTpDocumento:        raw.DsTpDocumento,
	}

	if exp.CdMunicipio.Valid && exp.CdMunicipio.Int64 == MunicipalityAbsent {
		exp.CdMunicipio = sql.NullInt64{}
	}

	var errs []*FieldCoercionError

	if raw.DtPagamento.Valid && strings.TrimSpace(raw.DtPagamento.String) != "" {
		iso, err := ParseDate(raw.DtPagamento.String)
		if err != nil {
			errs = append(errs, &FieldCoercionError{Line: raw.Line, Column: types.DtPagamento, Value: raw.DtPagamento.String, Err: err})
		} else {
			exp.DtPagamento = sql.NullString{String: iso, Valid: true}
		}
	}

	if raw.VrPagamento.Valid && strings.TrimSpace(raw.VrPagamento.String) != "" {
		amount, err := ParseAmount(raw.VrPagamento.String)
		if err != nil {
			errs = append(errs, &FieldCoercionError{Line: raw.Line, Column: types.VrPagamento, Value: raw.VrPagamento.String, Err: err})
		} else {
			exp.VrPagamento = decimal.NullDecimal{Decimal: amount, Valid: true}
		}
	}

	return exp, errs
}

// Result is the outcome of normalizing a record set.
type Result struct {
	Expenses     []types.Expense
	InvalidDates int
	Skipped      []*FieldCoercionError
}

type Normalizer struct {
	Policy    AmountPolicy
	appLogger *logger.Logger
}

func NewNormalizer(policy AmountPolicy, appLogger *logger.Logger) *Normalizer {
	if policy == "" {
		policy = AmountPolicyFail
	}
	return &Normalizer{Policy: policy, appLogger: appLogger}
}

// Normalize applies Record to every row. Invalid dates become absent. An
// invalid amount fails the whole set under AmountPolicyFail and drops the
// record under AmountPolicySkip.
func (n *Normalizer) Normalize(raw []types.RawExpense) (*Result, error) {
	const component = "Normalizer"

	result := &Result{Expenses: make([]types.Expense, 0, len(raw))}

	for _, r := range raw {
		exp, errs := Record(r)

		skip := false
		for _, ce := range errs {
			if ce.Column == types.DtPagamento {
				result.InvalidDates++
				n.appLogger.Debug(component, "Invalid date set to null: line=%d value=%q", ce.Line, ce.Value)
				continue
			}
			if n.Policy != AmountPolicySkip {
				return nil, ce
			}
			n.appLogger.Warn(component, "Dropping record with invalid amount: line=%d value=%q", ce.Line, ce.Value)
			result.Skipped = append(result.Skipped, ce)
			skip = true
		}
		if skip {
			continue
		}

		result.Expenses = append(result.Expenses, exp)
	}

	n.appLogger.Info(component, "Normalization completed: records=%d invalidDates=%d skipped=%d", len(result.Expenses), result.InvalidDates, len(result.Skipped))
	return result, nil
}
