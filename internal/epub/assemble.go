package epub

import (
	"archive/zip"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "git.home.luguber.info/inful/epubpack/internal/errors"
)

// member is one zip entry: relative path (slash-separated) and raw bytes
// read from the staging directory at assembly time.
type member struct {
	rel  string
	data []byte
}

// compressedExtensions lists the extensions stored deflated. Everything
// else, critically the extensionless mimetype file, is stored uncompressed.
var compressedExtensions = map[string]struct{}{
	".css":  {},
	".html": {},
	".ncx":  {},
	".opf":  {},
	".jpg":  {},
	".png":  {},
	".xml":  {},
}

func compressionMethod(rel string) uint16 {
	if _, ok := compressedExtensions[strings.ToLower(filepath.Ext(rel))]; ok {
		return zip.Deflate
	}
	return zip.Store
}

// collectMembers builds the ordered archive member list: the mimetype entry
// first, then every entry under META-INF, then every file at any depth under
// OEBPS. Unreadable files are skipped with a warning unless strict is set,
// in which case the first one fails collection.
func collectMembers(root string, strict bool) ([]member, []string, error) {
	var members []member
	var skipped []string

	readMember := func(abs, rel string) error {
		data, err := os.ReadFile(abs)
		if err != nil {
			if strict {
				return pkgerrors.Wrap(err, pkgerrors.CategoryArchive, pkgerrors.SeverityFatal, "read staged member "+rel)
			}
			skipped = append(skipped, rel)
			return nil
		}
		members = append(members, member{rel: rel, data: data})
		return nil
	}

	if err := readMember(filepath.Join(root, mimetypeName), mimetypeName); err != nil {
		return nil, skipped, err
	}

	for _, sub := range []string{metaInfDir, oebpsDir} {
		base := filepath.Join(root, sub)
		err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("walk staging %s: %w", sub, err)
			}
			if d.IsDir() {
				return nil
			}
			relToRoot, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			return readMember(path, filepath.ToSlash(relToRoot))
		})
		if err != nil {
			return nil, skipped, err
		}
	}
	return members, skipped, nil
}

// writeArchive writes the member list to a zip file in order, applying the
// extension-based compression policy. The caller guarantees the mimetype
// member is first; writeArchive stores it uncompressed per policy.
func writeArchive(path string, members []member) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CategoryArchive, pkgerrors.SeverityFatal, "create archive")
	}
	zw := zip.NewWriter(f)

	for _, m := range members {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   m.rel,
			Method: compressionMethod(m.rel),
		})
		if err != nil {
			_ = zw.Close()
			_ = f.Close()
			return pkgerrors.Wrap(err, pkgerrors.CategoryArchive, pkgerrors.SeverityFatal, "add archive member "+m.rel)
		}
		if _, err := w.Write(m.data); err != nil {
			_ = zw.Close()
			_ = f.Close()
			return pkgerrors.Wrap(err, pkgerrors.CategoryArchive, pkgerrors.SeverityFatal, "write archive member "+m.rel)
		}
	}

	if err := zw.Close(); err != nil {
		_ = f.Close()
		return pkgerrors.Wrap(err, pkgerrors.CategoryArchive, pkgerrors.SeverityFatal, "finalize archive")
	}
	return f.Close()
}

// Assemble collects the staged files and writes the final archive. It
// returns the relative names of members skipped as unreadable (empty in
// strict mode, where the first unreadable member is fatal).
func Assemble(stagingRoot, archivePath string, strict bool) ([]string, error) {
	members, skipped, err := collectMembers(stagingRoot, strict)
	if err != nil {
		return skipped, err
	}
	if len(members) == 0 || members[0].rel != mimetypeName {
		return skipped, pkgerrors.New(pkgerrors.CategoryArchive, pkgerrors.SeverityFatal, "staging is missing the mimetype member")
	}
	if err := writeArchive(archivePath, members); err != nil {
		return skipped, err
	}
	return skipped, nil
}
