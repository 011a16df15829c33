// Package archive implements the container-format archive engine: header
// and central-directory I/O, entry lifecycle, atomic save, and read-time
// validation, behind a small public surface (Open, Create, Add, Update,
// Delete, Extract, TestIntegrity, List, Save, Close).
package archive

import (
	"os"
	"strings"
	"time"

	"github.com/golang/glog"

	"lark/pkg/checksum"
	"lark/pkg/codec"
	lerrors "lark/pkg/errors"
	"lark/pkg/filetime"
)

// Archive is the in-memory state of one open or newly created container.
// It is not safe for concurrent use by multiple goroutines.
type Archive struct {
	path    string
	header  *Header
	entries []*Entry

	directorySignature uint32
	directoryOffset    int64

	sourceFile     *os.File
	sourceFileSize int64

	modified bool
}

// Create resets an Archive to an empty, modified state bound to path. No
// file is written until Save.
func Create(path string) *Archive {
	now := filetime.FromTime(time.Now())
	return &Archive{
		path: path,
		header: &Header{
			Signature:               SignaturePrimary,
			FormatVersion:           FormatVersion,
			MinUnpackVersion:        FormatVersion,
			BlockSize:               DefaultBlockSize,
			DefaultCompressionLevel: 6,
			CreationTime:            now,
			LastUpdateTime:          now,
		},
		directorySignature: DirectorySignaturePrimary,
		modified:            true,
	}
}

// Add compresses source with the codec for method at level, computes its
// CRC-32, enforces the expansion guard, and appends a new entry. Nothing
// is written to the on-disk file until Save.
func (a *Archive) Add(source []byte, name string, method codec.Method, level int, modTime time.Time) error {
	if !validNameLength(name) {
		return lerrors.NewFormatError(lerrors.InvalidFileName, "name length out of range", nil)
	}
	if !method.Valid() {
		return lerrors.NewFormatError(lerrors.InvalidCompressionMethod, "unknown compression method", nil)
	}

	crc := checksum.CRC32(source)

	compressed, err := codec.CompressBuffer(method, level, source)
	if err != nil {
		return err
	}
	if compressed == nil {
		// A nil CompressedData marks an entry carried over from the
		// previous file, so an empty payload is kept as a non-nil slice.
		compressed = []byte{}
	}
	recordedLevel := byte(level)
	if method == codec.Store {
		recordedLevel = 0
	}

	e := &Entry{
		FileName:          name,
		OriginalSize:       int64(len(source)),
		CompressedSize:     uint32(len(compressed)),
		CRC32:              crc,
		ModificationTime:   filetime.FromTime(modTime),
		CompressionMethod:  method,
		CompressionLevel:   recordedLevel,
		CompressedData:     compressed,
	}
	if err := checkExpansionGuard(e); err != nil {
		return err
	}

	a.entries = append(a.entries, e)
	a.modified = true
	glog.V(2).Infof("added entry %q: %d -> %d bytes (method %d)", name, len(source), len(compressed), method)
	return nil
}

// Update is Delete (if name is present) followed by Add, so the new
// entry lands at the end of the directory order.
func (a *Archive) Update(source []byte, name string, method codec.Method, level int, modTime time.Time) error {
	a.Delete(name)
	return a.Add(source, name, method, level, modTime)
}

// Delete removes the entry matching name, case-insensitively. Silent if
// no entry matches.
func (a *Archive) Delete(name string) {
	lower := strings.ToLower(name)
	out := a.entries[:0]
	removed := false
	for _, e := range a.entries {
		if strings.ToLower(e.FileName) == lower {
			removed = true
			continue
		}
		out = append(out, e)
	}
	a.entries = out
	if removed {
		a.modified = true
	}
}

// EntryInfo is the read-only snapshot List returns for one entry.
type EntryInfo struct {
	FileName          string
	OriginalSize       int64
	CompressedSize     uint32
	CRC32              uint32
	ModificationTime   time.Time
	CompressionMethod  codec.Method
	CompressionLevel   byte
	FileAttributes     uint32
	Ratio              float64
}

// MethodAggregate is List's per-method rollup.
type MethodAggregate struct {
	Method         codec.Method
	Count          int
	OriginalTotal   int64
	CompressedTotal int64
}

// List returns a snapshot of every entry plus per-method aggregates. It
// performs no I/O and reflects only current in-memory state.
func (a *Archive) List() ([]EntryInfo, []MethodAggregate) {
	infos := make([]EntryInfo, 0, len(a.entries))
	aggByMethod := make(map[codec.Method]*MethodAggregate)

	for _, e := range a.entries {
		infos = append(infos, EntryInfo{
			FileName:          e.FileName,
			OriginalSize:       e.OriginalSize,
			CompressedSize:     e.CompressedSize,
			CRC32:              e.CRC32,
			ModificationTime:   filetime.ToTime(e.ModificationTime),
			CompressionMethod:  e.CompressionMethod,
			CompressionLevel:   e.CompressionLevel,
			FileAttributes:     e.FileAttributes,
			Ratio:               e.ratio(),
		})

		agg := aggByMethod[e.CompressionMethod]
		if agg == nil {
			agg = &MethodAggregate{Method: e.CompressionMethod}
			aggByMethod[e.CompressionMethod] = agg
		}
		agg.Count++
		agg.OriginalTotal += e.OriginalSize
		agg.CompressedTotal += int64(e.CompressedSize)
	}

	aggs := make([]MethodAggregate, 0, len(aggByMethod))
	for _, a := range aggByMethod {
		aggs = append(aggs, *a)
	}
	return infos, aggs
}

// Close saves pending modifications, if any, then releases the source
// file handle.
func (a *Archive) Close() error {
	var saveErr error
	if a.modified {
		saveErr = a.Save()
	}
	if a.sourceFile != nil {
		a.sourceFile.Close()
		a.sourceFile = nil
	}
	return saveErr
}

func (a *Archive) findEntry(name string) *Entry {
	lower := strings.ToLower(name)
	for _, e := range a.entries {
		if strings.ToLower(e.FileName) == lower {
			return e
		}
	}
	return nil
}
