package profile

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// LoadError reports a profile that failed to load, with the CUE source
// position when one is available.
type LoadError struct {
	File    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Compile parses CUE source, unifies it with the embedded schema, applies
// defaults, and decodes the result. filename is used for positions only.
func Compile(filename, src string) (Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Profile{}, &LoadError{File: filename, Message: fmt.Sprintf("compiling embedded schema: %v", err)}
	}
	def := schema.LookupPath(cue.ParsePath("#Profile"))

	val := ctx.CompileString(src, cue.Filename(filename))
	if err := val.Err(); err != nil {
		return Profile{}, &LoadError{File: filename, Message: fmt.Sprintf("parsing profile: %v", err), Pos: firstPos(err)}
	}

	unified := def.Unify(val)
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return Profile{}, &LoadError{File: filename, Message: fmt.Sprintf("validating profile: %v", err), Pos: firstPos(err)}
	}

	var p Profile
	if err := unified.Decode(&p); err != nil {
		return Profile{}, &LoadError{File: filename, Message: fmt.Sprintf("decoding profile: %v", err), Pos: firstPos(err)}
	}
	if err := p.Validate(); err != nil {
		return Profile{}, &LoadError{File: filename, Message: err.Error()}
	}
	return p, nil
}

// LoadFile loads a single profile from a .cue file.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, &LoadError{File: path, Message: fmt.Sprintf("reading profile: %v", err)}
	}
	return Compile(path, string(data))
}

// LoadDir loads every .cue file under dir, one profile per file, failing on
// the first bad file or duplicate name. Files are visited in lexical order.
func LoadDir(dir string) ([]Profile, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{File: dir, Message: "profile directory not found"}
	}
	if err != nil {
		return nil, &LoadError{File: dir, Message: fmt.Sprintf("accessing profile directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{File: dir, Message: "not a directory"}
	}

	files, err := findCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{File: dir, Message: fmt.Sprintf("scanning profile directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{File: dir, Message: "no .cue profile files found"}
	}

	seen := make(map[string]string, len(files))
	profiles := make([]Profile, 0, len(files))
	for _, f := range files {
		p, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[p.Name]; ok {
			return nil, &LoadError{File: f, Message: fmt.Sprintf("duplicate profile name %q, already defined in %s", p.Name, prev)}
		}
		seen[p.Name] = f
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// findCUEFiles walks dir and returns all .cue file paths.
func findCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func firstPos(err error) token.Pos {
	if positions := cueerrors.Positions(err); len(positions) > 0 {
		return positions[0]
	}
	return token.NoPos
}
