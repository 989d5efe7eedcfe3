package extract

import (
	"sync"

	"github.com/farxc/prestacao-contas/internal/campaign/types"
	"github.com/farxc/prestacao-contas/internal/store"
)

type documentoKey struct {
	prestador string
	documento string
}

type despesaKey struct {
	prestador  string
	fornecedor string
	data       string
}

// dedup projects every expense with a complete key, keeping the first row
// seen for each key and the order in which keys first appear.
func dedup[K comparable, T any](expenses []types.Expense, key func(types.Expense) (K, bool), project func(types.Expense) T) []T {
	seen := make(map[K]struct{})
	out := []T{}
	for _, e := range expenses {
		k, ok := key(e)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, project(e))
	}
	return out
}

func Locais(expenses []types.Expense) []store.Local {
	return dedup(expenses,
		func(e types.Expense) (int64, bool) { return e.CdMunicipio.Int64, e.CdMunicipio.Valid },
		func(e types.Expense) store.Local {
			return store.Local{CdMunicipio: e.CdMunicipio.Int64, NmMunicipio: e.NmMunicipio, SgUF: e.SgUF}
		})
}

func Partidos(expenses []types.Expense) []store.Partido {
	return dedup(expenses,
		func(e types.Expense) (string, bool) { return e.SgPartido.String, e.SgPartido.Valid },
		func(e types.Expense) store.Partido {
			return store.Partido{SgPartido: e.SgPartido.String, NmPartido: e.NmPartido, DsTpEsferaPartidaria: e.DsTpEsferaPartidaria}
		})
}

func Fornecedores(expenses []types.Expense) []store.Fornecedor {
	return dedup(expenses,
		func(e types.Expense) (string, bool) { return e.NrCpfCnpjFornecedor.String, e.NrCpfCnpjFornecedor.Valid },
		func(e types.Expense) store.Fornecedor {
			return store.Fornecedor{NrCpfCnpjFornecedor: e.NrCpfCnpjFornecedor.String, NmFornecedor: e.NmFornecedor, DsTpFornecedor: e.DsTpFornecedor}
		})
}

func Prestadores(expenses []types.Expense) []store.Prestador {
	return dedup(expenses,
		func(e types.Expense) (string, bool) { return e.NrCnpjPrestadorConta.String, e.NrCnpjPrestadorConta.Valid },
		func(e types.Expense) store.Prestador {
			return store.Prestador{NrCnpjPrestadorConta: e.NrCnpjPrestadorConta.String, CdMunicipio: e.CdMunicipio, SgPartido: e.SgPartido}
		})
}

func Documentos(expenses []types.Expense) []store.Documento {
	return dedup(expenses,
		func(e types.Expense) (documentoKey, bool) {
			return documentoKey{e.NrCnpjPrestadorConta.String, e.NrDocumento.String},
				e.NrCnpjPrestadorConta.Valid && e.NrDocumento.Valid
		},
		func(e types.Expense) store.Documento {
			return store.Documento{
				NrCnpjPrestadorConta: e.NrCnpjPrestadorConta.String,
				NrDocumento:          e.NrDocumento.String,
				CdTpDocumento:        e.CdTpDocumento,
				DsTpDocumento:        e.DsTpDocumento,
			}
		})
}

func Despesas(expenses []types.Expense) []store.Despesa {
	return dedup(expenses,
		func(e types.Expense) (despesaKey, bool) {
			return despesaKey{e.NrCnpjPrestadorConta.String, e.NrCpfCnpjFornecedor.String, e.DtPagamento.String},
				e.NrCnpjPrestadorConta.Valid && e.NrCpfCnpjFornecedor.Valid && e.DtPagamento.Valid
		},
		func(e types.Expense) store.Despesa {
			return store.Despesa{
				NrCnpjPrestadorConta: e.NrCnpjPrestadorConta.String,
				NrCpfCnpjFornecedor:  e.NrCpfCnpjFornecedor.String,
				DtPagamento:          e.DtPagamento.String,
				VrPagamento:          e.VrPagamento,
			}
		})
}

// Entities builds the six entity sets concurrently. Each projection only
// reads expenses and writes its own field, so no locking is needed.
func Entities(expenses []types.Expense) *store.Entities {
	var wg sync.WaitGroup
	wg.Add(6)

	e := &store.Entities{}

	go func() {
		defer wg.Done()
		e.Locais = Locais(expenses)
	}()
	go func() {
		defer wg.Done()
		e.Partidos = Partidos(expenses)
	}()
	go func() {
		defer wg.Done()
		e.Fornecedores = Fornecedores(expenses)
	}()
	go func() {
		defer wg.Done()
		e.Prestadores = Prestadores(expenses)
	}()
	go func() {
		defer wg.Done()
		e.Documentos = Documentos(expenses)
	}()
	go func() {
		defer wg.Done()
		e.Despesas = Despesas(expenses)
	}()

	wg.Wait()
	return e
}
