package storage

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	errs "github.com/Memorem/wallpaperflare-parser/pkg/errors"
)

// RenameReport counts what a rename pass did
type RenameReport struct {
	Renamed   int
	Unchanged int
	// Skipped counts entries that are not <prefix>_<token>.<ext> regular files
	Skipped int
	// Moves maps each renamed file to its new name, both relative to the directory
	Moves map[string]string
}

// Rename renumbers every <prefix>_<token>.<ext> file in dir. Files are taken in
// listing order: os.ReadDir order, with numeric tokens compared by value so
// that an already sequential directory keeps its order past index 9.
func Rename(dir, prefix string) (RenameReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return RenameReport{}, errs.Wrap(errs.ErrorTypeStorage, dir, fmt.Errorf("failed to read directory: %w", err))
	}

	var names, others []string
	for _, e := range entries {
		if _, ok := parseFileName(e.Name(), prefix); ok {
			names = append(names, e.Name())
		} else {
			others = append(others, e.Name())
		}
	}
	slices.SortStableFunc(names, func(a, b string) int {
		return compareTokens(a, b, prefix)
	})

	return RenameOrdered(dir, prefix, append(names, others...))
}

// RenameOrdered renames names[i] to <prefix>_<i>.<ext>, where i counts only
// the names that match the pattern. Every file that has to move is first
// moved to a temporary name so no rename can clobber another input. On
// failure every file is moved back to its original name.
func RenameOrdered(dir, prefix string, names []string) (RenameReport, error) {
	report := RenameReport{Moves: make(map[string]string)}
	var moves []renameMove
	sources := make(map[string]struct{})

	index := 0
	for _, name := range names {
		parsed, ok := parseFileName(name, prefix)
		if !ok {
			report.Skipped++
			continue
		}
		info, err := os.Lstat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			report.Skipped++
			continue
		}

		target := ImageName{Token: strconv.Itoa(index), Ext: parsed.Ext}.FileName(prefix)
		index++
		if target == name {
			report.Unchanged++
			continue
		}
		sources[name] = struct{}{}
		moves = append(moves, renameMove{
			from: filepath.Join(dir, name),
			tmp:  filepath.Join(dir, fmt.Sprintf(".%s.rename-%d.tmp", prefix, len(moves))),
			to:   filepath.Join(dir, target),
		})
	}

	// a target may only be occupied by a file that moves away
	for _, mv := range moves {
		if _, moving := sources[filepath.Base(mv.to)]; moving {
			continue
		}
		if _, err := os.Lstat(mv.to); err == nil {
			return report, errs.New(errs.ErrorTypeStorage, mv.to, "rename target already exists")
		}
	}

	// phase 1: move every source out of the way
	for i, mv := range moves {
		if err := os.Rename(mv.from, mv.tmp); err != nil {
			rollback(moves[:i], 0)
			return report, errs.Wrap(errs.ErrorTypeStorage, mv.from, fmt.Errorf("failed to stage rename: %w", err))
		}
	}

	// phase 2: temporary names to final names
	for i, mv := range moves {
		if _, err := os.Lstat(mv.to); err == nil {
			rollback(moves, i)
			return report, errs.New(errs.ErrorTypeStorage, mv.to, "rename target already exists")
		}
		if err := os.Rename(mv.tmp, mv.to); err != nil {
			rollback(moves, i)
			return report, errs.Wrap(errs.ErrorTypeStorage, mv.to, fmt.Errorf("failed to rename: %w", err))
		}
	}

	for _, mv := range moves {
		report.Moves[filepath.Base(mv.from)] = filepath.Base(mv.to)
	}
	report.Renamed = len(moves)
	return report, nil
}

type renameMove struct {
	from, tmp, to string
}

// rollback restores the original names of moves. The first done moves already
// reached their final name, the rest are still staged.
func rollback(moves []renameMove, done int) {
	for i, mv := range moves {
		if i < done {
			_ = os.Rename(mv.to, mv.tmp)
		}
	}
	for _, mv := range moves {
		_ = os.Rename(mv.tmp, mv.from)
	}
}

// compareTokens orders two matching file names by token value, numeric
// tokens first.
func compareTokens(a, b, prefix string) int {
	na, _ := parseFileName(a, prefix)
	nb, _ := parseFileName(b, prefix)
	ia, errA := strconv.Atoi(na.Token)
	ib, errB := strconv.Atoi(nb.Token)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(ia, ib)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(na.Token, nb.Token)
	}
}
