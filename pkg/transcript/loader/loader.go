package loader

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/go-go-golems/qalog/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Result is the ordered document set of one load: the primary first, then
// its variants oldest first.
type Result struct {
	Documents []*transcript.Document
	Warnings  []transcript.Warning
}

// Conversations flattens the conversations of all documents in load order.
func (r *Result) Conversations() []transcript.Conversation {
	var ret []transcript.Conversation
	for _, doc := range r.Documents {
		ret = append(ret, doc.Conversations...)
	}
	return ret
}

// Users merges the initials maps of all documents. Later documents win.
func (r *Result) Users() map[string]string {
	ret := map[string]string{}
	for _, doc := range r.Documents {
		for k, v := range doc.Users {
			ret[k] = v
		}
	}
	return ret
}

// Primary returns the primary document.
func (r *Result) Primary() *transcript.Document {
	if len(r.Documents) == 0 {
		return nil
	}
	return r.Documents[0]
}

// LoadDir loads primary and its variants from dir.
func LoadDir(dir string, primary string) (*Result, error) {
	return Load(os.DirFS(dir), primary)
}

// Load reads the primary document and every timestamped variant next to it.
//
// A primary that cannot be opened fails with a *transcript.MissingFileError,
// a malformed primary with a *transcript.MalformedDocumentError. Variants that
// cannot be read or parsed are skipped and reported as warnings.
func Load(fsys fs.FS, primary string) (*Result, error) {
	primary = cleanPrimary(primary)
	data, err := fs.ReadFile(fsys, primary)
	if err != nil {
		return nil, &transcript.MissingFileError{Path: primary, Err: err}
	}

	doc, warnings, err := Parse(primary, data)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Documents: []*transcript.Document{doc},
		Warnings:  warnings,
	}

	variants, err := FindVariants(fsys, primary)
	if err != nil {
		log.Warn().Err(err).Str("primary", primary).Msg("could not look for variants")
		res.Warnings = append(res.Warnings, transcript.Warning{Document: primary, Err: err})
		return res, nil
	}

	for _, v := range variants {
		data, err := fs.ReadFile(fsys, v.Name)
		if err != nil {
			err = errors.Wrap(err, "could not read variant")
			log.Warn().Err(err).Str("variant", v.Name).Msg("skipping variant")
			res.Warnings = append(res.Warnings, transcript.Warning{Document: v.Name, Err: err})
			continue
		}

		vdoc, vwarnings, err := Parse(v.Name, data)
		if err != nil {
			log.Warn().Err(err).Str("variant", v.Name).Msg("skipping variant")
			res.Warnings = append(res.Warnings, transcript.Warning{Document: v.Name, Err: err})
			continue
		}
		vdoc.Timestamp = v.Timestamp

		res.Documents = append(res.Documents, vdoc)
		res.Warnings = append(res.Warnings, vwarnings...)
	}

	log.Debug().
		Str("primary", primary).
		Int("documents", len(res.Documents)).
		Int("warnings", len(res.Warnings)).
		Msg("loaded snapshot documents")

	return res, nil
}

// cleanPrimary turns a user supplied path such as "./prompts.yaml" into the
// slash separated form fs.FS expects.
func cleanPrimary(primary string) string {
	return path.Clean(filepath.ToSlash(primary))
}
