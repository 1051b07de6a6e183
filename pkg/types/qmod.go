package types

// Qmod declaration kinds recognized by the surface scanner.
const (
	DeclQFunc   = "qfunc"
	DeclQStruct = "qstruct"
)

// QmodDecl is a top-level declaration found in a .qmod source file.
type QmodDecl struct {
	Kind string // DeclQFunc or DeclQStruct
	Name string
	Line int // 1-based line of the declaration
}

// Qmod is a scanned .qmod source file. The scanner reads surface
// structure only; circuit semantics belong to the external compiler.
type Qmod struct {
	Path    string
	Name    string // base name without the .qmod extension
	Source  string
	Decls   []QmodDecl
	HasMain bool // a qfunc named main is declared
}

// Companion file suffixes that may accompany a .qmod source.
const (
	SynthesisOptionsSuffix = ".synthesis_options.json"
	MetadataSuffix         = ".metadata.json"
)
