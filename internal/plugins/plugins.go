// Package plugins imports all plugin packages to trigger their init() registration.
// Import this package for side effects only.
package plugins

import (
	// Import all plugin packages to register them with the registry.
	_ "geopuzzle/internal/plugins/baseconvert"
	_ "geopuzzle/internal/plugins/chemical"
	_ "geopuzzle/internal/plugins/coordinates"
	_ "geopuzzle/internal/plugins/formula"
	_ "geopuzzle/internal/plugins/hex"
	_ "geopuzzle/internal/plugins/lettervalue"
	_ "geopuzzle/internal/plugins/roman"
)
