package archive

import (
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	lerrors "lark/pkg/errors"
	"lark/pkg/filetime"
)

// SaveOption customises one Save call.
type SaveOption func(*Archive)

// WithPrimarySignature forces Save to write the primary signature pair
// even if the archive was opened with the legacy one. Without this
// option, Save preserves whichever signature pair was present at Open
// (Create always starts from the primary pair).
func WithPrimarySignature() SaveOption {
	return func(a *Archive) {
		a.header.Signature = SignaturePrimary
		a.directorySignature = DirectorySignaturePrimary
	}
}

// Save persists pending modifications following the atomic-replace
// algorithm in spec.md §4.1: write header, entry payloads (from memory or
// range-copied from the previously opened file), and the central
// directory to a temp file, then rename it over the target. If no prior
// archive exists the target is written directly.
func (a *Archive) Save(opts ...SaveOption) error {
	if a.path == "" {
		return lerrors.NewArchiveError(lerrors.ArchiveNameNotSet, "archive path not set")
	}
	for _, opt := range opts {
		opt(a)
	}

	outputPath := a.path
	usingTemp := a.sourceFile != nil
	if usingTemp {
		outputPath = a.path + ".tmp"
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return lerrors.NewIoError(lerrors.FileNotFound, "creating output file", err)
	}

	if err := a.writeTo(out); err != nil {
		out.Close()
		if usingTemp {
			os.Remove(outputPath)
		}
		return err
	}

	if err := out.Close(); err != nil {
		if usingTemp {
			os.Remove(outputPath)
		}
		return lerrors.NewIoError(lerrors.FileNotFound, "closing output file", err)
	}

	if a.sourceFile != nil {
		a.sourceFile.Close()
		a.sourceFile = nil
	}

	if usingTemp {
		if err := replaceFile(outputPath, a.path); err != nil {
			os.Remove(outputPath)
			return err
		}
	}

	reopened, err := os.Open(a.path)
	if err != nil {
		return lerrors.NewIoError(lerrors.ArchiveNotFound, "reopening saved archive", err)
	}
	info, err := reopened.Stat()
	if err != nil {
		reopened.Close()
		return lerrors.NewIoError(lerrors.ArchiveNotFound, "statting saved archive", err)
	}
	a.sourceFile = reopened
	a.sourceFileSize = info.Size()
	a.modified = false

	glog.V(1).Infof("saved archive %s: %d entries", a.path, len(a.entries))
	return nil
}

// writeTo writes the full container — header, entry payloads, directory
// — to w, assigning FileOffset for each entry in directory order as it
// goes.
func (a *Archive) writeTo(w io.WriteSeeker) error {
	if _, err := w.Seek(HeaderSize, io.SeekStart); err != nil {
		return lerrors.NewIoError(lerrors.FileNotFound, "seeking past header", err)
	}

	pos := int64(HeaderSize)
	for _, e := range a.entries {
		oldOffset := e.FileOffset
		e.FileOffset = pos
		n, err := a.writeEntryPayload(w, e, oldOffset)
		if err != nil {
			return err
		}
		pos += n
	}

	a.header.LastUpdateTime = filetime.FromTime(time.Now())
	a.header.FileCount = uint32(len(a.entries))

	if err := writeDirectory(w, a.directorySignature, a.entries); err != nil {
		return err
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		return lerrors.NewIoError(lerrors.FileNotFound, "seeking to header", err)
	}
	headerBuf, err := packHeader(a.header)
	if err != nil {
		return err
	}
	if _, err := w.Write(headerBuf); err != nil {
		return lerrors.NewIoError(lerrors.FileNotFound, "writing header", err)
	}

	if _, err := w.Seek(0, io.SeekEnd); err != nil {
		return lerrors.NewIoError(lerrors.FileNotFound, "seeking to end", err)
	}
	return nil
}

// writeEntryPayload writes e's compressed bytes — from CompressedData if
// present, otherwise range-copied from the prior file handle at
// oldOffset, e's FileOffset before the caller reassigned it — and
// returns the number of bytes written.
func (a *Archive) writeEntryPayload(w io.Writer, e *Entry, oldOffset int64) (int64, error) {
	if e.CompressedData != nil {
		n, err := w.Write(e.CompressedData)
		if err != nil {
			return 0, lerrors.NewIoError(lerrors.FileNotFound, "writing entry payload", err)
		}
		e.CompressedData = nil
		return int64(n), nil
	}

	if a.sourceFile == nil {
		return 0, lerrors.NewFormatError(lerrors.NoCompressedData, "no compressed data available for "+e.FileName, nil)
	}

	buf := make([]byte, e.CompressedSize)
	if _, err := a.sourceFile.ReadAt(buf, oldOffset); err != nil {
		return 0, lerrors.NewIoError(lerrors.FileNotFound, "range-copying entry payload", err)
	}
	if _, err := w.Write(buf); err != nil {
		return 0, lerrors.NewIoError(lerrors.FileNotFound, "writing range-copied payload", err)
	}
	return int64(len(buf)), nil
}

// replaceFile deletes dst (if present) and renames src to dst, per
// spec.md §4.1 step 6.
func replaceFile(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return lerrors.NewIoError(lerrors.ArchiveNotFound, "removing original archive before rename", err)
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return lerrors.NewIoError(lerrors.ArchiveNotFound, "renaming temp file over target", err)
	}
	return nil
}
