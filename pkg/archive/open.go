package archive

import (
	"os"

	"github.com/golang/glog"

	lerrors "lark/pkg/errors"
)

// Open reads an existing archive at path: header, central directory, and
// full invariant validation (spec.md §3, checked during parsing so a
// violation can be attributed to the offending entry). The returned
// Archive keeps a read handle open on the backing file for Save's
// range-copy of unmodified entries; Close releases it.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, lerrors.NewIoError(lerrors.ArchiveNotFound, "archive not found", err)
		}
		return nil, lerrors.NewIoError(lerrors.ArchiveNotFound, "opening archive", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, lerrors.NewIoError(lerrors.ArchiveNotFound, "statting archive", err)
	}
	fileSize := info.Size()

	if fileSize < HeaderSize {
		f.Close()
		return nil, lerrors.NewFormatError(lerrors.ArchiveTooSmall, "archive shorter than header", nil)
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := f.ReadAt(headerBuf, 0); err != nil {
		f.Close()
		return nil, lerrors.NewIoError(lerrors.ArchiveNotFound, "reading header", err)
	}
	header, err := unpackHeader(headerBuf)
	if err != nil {
		f.Close()
		return nil, err
	}

	dirOffset, err := locateDirectory(f, fileSize)
	if err != nil {
		f.Close()
		return nil, err
	}

	dirSig, entries, err := readDirectory(f, dirOffset)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := validateHeader(header, len(entries)); err != nil {
		f.Close()
		return nil, err
	}
	if err := validateEntries(entries, dirOffset); err != nil {
		f.Close()
		return nil, err
	}

	glog.V(1).Infof("opened archive %s: %d entries, directory at offset %d", path, len(entries), dirOffset)

	return &Archive{
		path:               path,
		header:             header,
		entries:            entries,
		directorySignature: dirSig,
		directoryOffset:    dirOffset,
		sourceFile:         f,
		sourceFileSize:     fileSize,
		modified:           false,
	}, nil
}
