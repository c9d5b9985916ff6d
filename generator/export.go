package generator

import (
	"os"
	"path/filepath"
)

// outputPath names the artifact after the record identifier. The output
// directory must exist before a run starts.
func (g *Generator) outputPath(id string) string {
	return filepath.Join(g.out.Dir, id+g.out.Format.Ext())
}

// export writes one image body in a single write-then-close, so a record
// is either fully on disk or absent.
func (g *Generator) export(id string, body []byte) error {
	return os.WriteFile(g.outputPath(id), body, 0o644)
}
