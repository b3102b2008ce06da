// Package all imports every supported declarations format.
//
// Import this package for its side effects to register all formats:
//
//	import (
//		"github.com/git-pkgs/pkgversions"
//		_ "github.com/git-pkgs/pkgversions/all"
//	)
//
//	// Now all formats are available
//	formats := pkgversions.SupportedFormats()
//	// ["requirements", "dockerfile"]
package all

import (
	_ "github.com/git-pkgs/pkgversions/internal/dockerfile"
	_ "github.com/git-pkgs/pkgversions/internal/requirements"
)
