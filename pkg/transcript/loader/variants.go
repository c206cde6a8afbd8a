package loader

import (
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// VariantLayout is the timestamp layout used when writing new variants.
const VariantLayout = "20060102T150405"

// variantLayouts are the timestamp spellings accepted in variant file names.
var variantLayouts = []string{
	VariantLayout,
	"20060102",
	"200601021504",
	"20060102150405",
	"20060102-150405",
	"20060102_150405",
	"2006-01-02",
	"2006-01-02T15-04-05",
}

// Variant is a timestamped sibling of the primary document.
type Variant struct {
	Name      string
	Timestamp time.Time
}

// VariantName returns the file name of a variant of primary taken at t.
func VariantName(primary string, t time.Time) string {
	dir, base := path.Split(primary)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return dir + stem + "-" + t.UTC().Format(VariantLayout) + ext
}

// ParseVariantName returns the timestamp encoded in name if name is a variant
// of the primary document base name.
func ParseVariantName(primaryBase, name string) (time.Time, bool) {
	ext := path.Ext(primaryBase)
	stem := strings.TrimSuffix(primaryBase, ext)

	if name == primaryBase || !strings.HasPrefix(name, stem) || !strings.HasSuffix(name, ext) {
		return time.Time{}, false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, stem), ext)
	if len(rest) < 2 || (rest[0] != '-' && rest[0] != '_') {
		return time.Time{}, false
	}
	stamp := rest[1:]

	for _, layout := range variantLayouts {
		if len(layout) != len(stamp) {
			continue
		}
		t, err := time.ParseInLocation(layout, stamp, time.UTC)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FindVariants lists the variants of primary in the same directory, oldest
// first. Variants with equal timestamps are ordered by name.
func FindVariants(fsys fs.FS, primary string) ([]Variant, error) {
	primary = cleanPrimary(primary)
	dir, base := path.Split(primary)
	readDir := strings.TrimSuffix(dir, "/")
	if readDir == "" {
		readDir = "."
	}

	entries, err := fs.ReadDir(fsys, readDir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not list %s", readDir)
	}

	var ret []Variant
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		t, ok := ParseVariantName(base, entry.Name())
		if !ok {
			continue
		}
		ret = append(ret, Variant{
			Name:      dir + entry.Name(),
			Timestamp: t,
		})
	}

	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Timestamp.Equal(ret[j].Timestamp) {
			return ret[i].Name < ret[j].Name
		}
		return ret[i].Timestamp.Before(ret[j].Timestamp)
	})

	return ret, nil
}
