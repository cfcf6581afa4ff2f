package fee

import "go.uber.org/fx"

var Module = fx.Module("fee.catalog",
	fx.Provide(ProvideCatalog),
)

// ProvideCatalog builds the catalog with the baseline strategies. New
// methods are added here, never by branching inside existing strategies.
func ProvideCatalog() *Catalog {
	return NewCatalog(
		PixStrategy{},
		CardStrategy{},
	)
}
