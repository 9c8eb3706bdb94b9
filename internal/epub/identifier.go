package epub

import (
	"github.com/google/uuid"

	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
)

// PackageID is the random identifier embedded in content.opf and toc.ncx.
// One id is generated per run and threaded through every consumer so
// cross-references inside the package stay internally consistent.
type PackageID string

// NewPackageID produces a version 4 UUID from the crypto random source.
// Failure to obtain randomness is fatal to the run; there is no fallback.
func NewPackageID() (PackageID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", pkgerrors.Wrap(err, pkgerrors.CategoryIdentity, pkgerrors.SeverityFatal, "generate package identifier")
	}
	return PackageID(id.String()), nil
}

// URN renders the identifier in the urn:uuid form used as the package
// unique-identifier.
func (p PackageID) URN() string { return "urn:uuid:" + string(p) }

func (p PackageID) String() string { return string(p) }
