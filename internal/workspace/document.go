package workspace

import (
	"os"
	"strings"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/cache"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/symtab"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/utils"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/vdoc"
)

// Document is one file's fully-indexed state: parsed IR, its symbol table,
// and whatever embedded-language regions were detected inside it.
type Document struct {
	URI      string
	Text     string
	Language ir.SourceLanguage
	Version  int
	Hash     cache.ContentHash
	Doc      ir.DocumentIR
	SymTab   *symtab.Table
	Regions  []vdoc.Region
}

// FileReader reads a URI's current on-disk content, used to re-index a file
// that isn't currently open in the editor (a FileWatcher-triggered dirty
// mark, per internal/dirty.FileWatcher).
type FileReader interface {
	ReadFile(uri string) (string, error)
}

// osFileReader is the default FileReader, reading directly from the local
// filesystem.
type osFileReader struct{}

func (osFileReader) ReadFile(uri string) (string, error) {
	data, err := os.ReadFile(utils.UriToPath(uri))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// detectLanguage classifies uri by its file extension. Rholang is the
// default for any unrecognized extension, since a workspace is
// predominantly Rholang source with MeTTa appearing only in embedded
// regions (§4.10) or in its own `.metta` files.
func detectLanguage(uri string) ir.SourceLanguage {
	if strings.HasSuffix(uri, ".metta") {
		return ir.LanguageMetta
	}
	return ir.LanguageRholang
}
