package load

import (
	"context"
	"errors"

	"github.com/farxc/prestacao-contas/internal/logger"
	"github.com/farxc/prestacao-contas/internal/store"
)

// LoadEntities replaces the stored entity sets with e and records run as
// part of the same transaction.
func LoadEntities(ctx context.Context, e *store.Entities, run *store.IngestionRun, storage *store.Storage, appLogger *logger.Logger) error {
	const component = "Loader"
	counts := e.Counts()
	appLogger.Info(component, "Starting data load: locais=%d partidos=%d fornecedores=%d prestadores=%d documentos=%d despesas=%d",
		counts.Local, counts.Partido, counts.Fornecedor, counts.Prestador, counts.Documento, counts.Despesa)

	if err := storage.Entities.ReplaceAll(ctx, e, run); err != nil {
		var iv *store.IntegrityViolation
		if errors.As(err, &iv) {
			appLogger.Error(component, "Load rolled back: table=%s key=%s constraint=%s", iv.Table, iv.Key, iv.Constraint)
		} else {
			appLogger.Error(component, "Load rolled back: %v", err)
		}
		return err
	}

	appLogger.Info(component, "Data load completed: rows=%d", counts.Total())
	return nil
}
