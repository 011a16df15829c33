// Command lark is the CLI collaborator around pkg/archive: it translates
// the a|x|l|d|t|u command surface (spec.md §6) into calls against the
// public archive API. Wildcard expansion, recursive traversal, and
// progress rendering live here, never inside the engine.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"lark/pkg/archive"
	"lark/pkg/codec"
	"lark/pkg/progress"
)

var (
	flagRecursive bool
	flagOutDir    string
	flagLevel     int
	flagMethod    string
	flagVerbose   bool
)

func main() {
	root := &cobra.Command{
		Use:   "lark",
		Short: "container archive engine",
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose progress output")

	root.AddCommand(addCmd(), extractCmd(), listCmd(), deleteCmd(), testCmd(), updateCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add <archive> <pattern>...",
		Aliases: []string{"a"},
		Short:   "add files to an archive",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args[0], args[1:], false)
		},
	}
	bindWriteFlags(cmd)
	return cmd
}

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update <archive> <pattern>...",
		Aliases: []string{"u"},
		Short:   "update files already in an archive, or add them",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args[0], args[1:], true)
		},
	}
	bindWriteFlags(cmd)
	return cmd
}

func bindWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "recurse into directories that a pattern names or matches")
	cmd.Flags().StringVarP(&flagOutDir, "outdir", "o", "", "unused for add/update; present for symmetry with extract")
	cmd.Flags().IntVarP(&flagLevel, "level", "c", 6, "compression level 0-9 (use -c<digit>, e.g. -c9)")
	cmd.Flags().StringVarP(&flagMethod, "method", "m", "deflate", "compression method: store|lzss|lzhuf|deflate|lzw|lz77")
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extract <archive> [name]...",
		Aliases: []string{"x"},
		Short:   "extract entries from an archive",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0], args[1:])
		},
	}
	cmd.Flags().StringVarP(&flagOutDir, "outdir", "o", ".", "destination directory")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list <archive>",
		Aliases: []string{"l"},
		Short:   "list archive contents",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(args[0])
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <archive> <name>...",
		Aliases: []string{"d"},
		Short:   "delete entries from an archive",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args[0], args[1:])
		},
	}
}

func testCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "test <archive>",
		Aliases: []string{"t"},
		Short:   "verify every entry's CRC-32",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(args[0])
		},
	}
}

func runAdd(path string, patterns []string, update bool) error {
	method, err := parseMethod(flagMethod)
	if err != nil {
		return err
	}

	a, err := openOrCreate(path)
	if err != nil {
		return err
	}

	files, err := expandPatterns(patterns, flagRecursive)
	if err != nil {
		return err
	}

	progress.SetTestMode(!flagVerbose)
	progress.Init(0)
	defer progress.Stop()

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		info, err := os.Stat(f)
		if err != nil {
			return err
		}
		name := filepath.Base(f)
		if update {
			err = a.Update(data, name, method, flagLevel, info.ModTime())
		} else {
			err = a.Add(data, name, method, flagLevel, info.ModTime())
		}
		if err != nil {
			return err
		}
		progress.AddBytes(uint64(len(data)))
		glog.V(1).Infof("%s: added %q (%d bytes)", path, name, len(data))
	}

	return a.Save()
}

func runExtract(path string, names []string) error {
	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	infos, _ := a.List()
	if len(names) == 0 {
		for _, info := range infos {
			names = append(names, info.FileName)
		}
	}

	if err := os.MkdirAll(flagOutDir, 0o755); err != nil {
		return err
	}

	progress.SetTestMode(!flagVerbose)
	progress.Init(0)
	defer progress.Stop()

	for _, name := range names {
		dest := filepath.Join(flagOutDir, name)
		out, err := os.Create(dest)
		if err != nil {
			return err
		}
		writer := &progress.Writer{W: out}
		err = a.Extract(name, io.Writer(writer))
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func runList(path string) error {
	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	infos, aggs := a.List()
	fmt.Printf("%-30s %12s %12s %8s %s\n", "Name", "Original", "Compressed", "Ratio", "Method")
	for _, e := range infos {
		fmt.Printf("%-30s %12d %12d %8.2f %s\n", e.FileName, e.OriginalSize, e.CompressedSize, e.Ratio, methodName(e.CompressionMethod))
	}
	fmt.Println()
	for _, agg := range aggs {
		fmt.Printf("%s: %d entries, %d -> %d bytes\n", methodName(agg.Method), agg.Count, agg.OriginalTotal, agg.CompressedTotal)
	}
	return nil
}

func runDelete(path string, names []string) error {
	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	for _, name := range names {
		a.Delete(name)
	}
	if err := a.Save(); err != nil {
		a.Close()
		return err
	}
	return a.Close()
}

func runTest(path string) error {
	a, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer a.Close()

	infos, _ := a.List()
	results := a.TestIntegrity()
	failed := 0
	for i, err := range results {
		if err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", infos[i].FileName, err)
		} else if flagVerbose {
			fmt.Printf("OK   %s\n", infos[i].FileName)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entries failed integrity check", failed, len(results))
	}
	fmt.Printf("%d entries OK\n", len(results))
	return nil
}

func openOrCreate(path string) (*archive.Archive, error) {
	a, err := archive.Open(path)
	if err == nil {
		return a, nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return archive.Create(path), nil
	}
	return nil, err
}

func expandPatterns(patterns []string, recursive bool) ([]string, error) {
	var out []string
	for _, p := range patterns {
		if !recursive {
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				out = append(out, p)
				continue
			}
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, err
			}
			if info.IsDir() {
				if !recursive {
					continue
				}
				err := filepath.WalkDir(m, func(sub string, d os.DirEntry, err error) error {
					if err != nil || d.IsDir() {
						return err
					}
					out = append(out, sub)
					return nil
				})
				if err != nil {
					return nil, err
				}
				continue
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func parseMethod(s string) (codec.Method, error) {
	switch strings.ToLower(s) {
	case "store", "0":
		return codec.Store, nil
	case "lzss", "1":
		return codec.LZSS, nil
	case "lzhuf", "2":
		return codec.LZHUF, nil
	case "deflate", "3":
		return codec.Deflate, nil
	case "lzw", "4":
		return codec.LZW, nil
	case "lz77", "5":
		return codec.LZ77, nil
	}
	return 0, fmt.Errorf("unknown compression method %q", s)
}

func methodName(m codec.Method) string {
	switch m {
	case codec.Store:
		return "store"
	case codec.LZSS:
		return "lzss"
	case codec.LZHUF:
		return "lzhuf"
	case codec.Deflate:
		return "deflate"
	case codec.LZW:
		return "lzw"
	case codec.LZ77:
		return "lz77"
	}
	return "method" + strconv.Itoa(int(m))
}
