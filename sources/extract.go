package sources

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/docblock"
	"go.jacobcolvin.com/oagen/node"
)

// ErrParse is returned when a Go source file cannot be parsed.
var ErrParse = errors.New("parse source")

// Declaration kinds recorded in [Block.Decl].
const (
	DeclType  = "type"
	DeclFunc  = "func"
	DeclField = "field"
	DeclConst = "const"
	DeclVar   = "var"
	DeclFile  = "file"
)

// File holds the documentation blocks extracted from one source file.
type File struct {
	// Aliases maps explicitly named imports to their import path.
	Aliases   map[string]string `msgpack:"aliases"`
	Path      string            `msgpack:"path"`
	Package   string            `msgpack:"package"`
	Constants []Constant        `msgpack:"constants"`
	Blocks    []Block           `msgpack:"blocks"`
}

// Block is one comment containing at least one "@", with the declaration it
// documents.
type Block struct {
	Text   string `msgpack:"text"`
	Symbol string `msgpack:"symbol"`
	Parent string `msgpack:"parent"`
	Decl   string `msgpack:"decl"`
	Field  string `msgpack:"field"`
	Line   int    `msgpack:"line"`
}

// Constant is a package-level constant with a literal value.
type Constant struct {
	Name string      `msgpack:"name"`
	Kind token.Token `msgpack:"kind"`
	Raw  string      `msgpack:"raw"`
}

// Value returns the typed constant value: string, int64, float64 or bool.
func (c Constant) Value() any {
	switch c.Kind {
	case token.STRING:
		s, err := strconv.Unquote(c.Raw)
		if err != nil {
			return c.Raw
		}

		return s

	case token.INT:
		if i, err := strconv.ParseInt(c.Raw, 0, 64); err == nil {
			return i
		}

	case token.FLOAT:
		if f, err := strconv.ParseFloat(c.Raw, 64); err == nil {
			return f
		}

	case token.IDENT:
		return c.Raw == "true"
	}

	return c.Raw
}

// DocBlocks converts the extracted blocks for [docblock.Parser.Parse]. The
// file's constants are looked up under its package name.
func (f *File) DocBlocks() []docblock.Block {
	var constants docblock.Constants

	if len(f.Constants) > 0 {
		constants = docblock.Constants{}
		for _, c := range f.Constants {
			constants.Set(f.Package, c.Name, c.Value())
		}
	}

	out := make([]docblock.Block, 0, len(f.Blocks))

	for _, b := range f.Blocks {
		db := docblock.Block{
			Text:     b.Text,
			Position: diag.Position{File: f.Path, Line: b.Line},
			Aliases:  f.Aliases,
			Context: &node.Context{
				Package: f.Package,
				Symbol:  b.Symbol,
				Parent:  b.Parent,
				Decl:    b.Decl,
				Field:   b.Field,
			},
		}

		if constants != nil {
			db.Constants = constants
		}

		out = append(out, db)
	}

	return out
}

// Extract returns the blocks of a source file. Go files are parsed so each
// block knows its declaration; other files are scanned for /** */ comments.
func Extract(filename string, src []byte) (*File, error) {
	if filepath.Ext(filename) == ".go" {
		return extractGo(filename, src)
	}

	return extractDocComments(filename, src), nil
}

func extractGo(filename string, src []byte) (*File, error) {
	fset := token.NewFileSet()

	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	out := &File{Path: filename, Package: f.Name.Name}
	x := &goExtractor{fset: fset, file: out, used: make(map[*ast.CommentGroup]bool)}

	for _, imp := range f.Imports {
		x.addImport(imp)
	}

	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			x.genDecl(d)
		case *ast.FuncDecl:
			x.add(d.Doc, Block{Symbol: funcName(d), Decl: DeclFunc})
		}
	}

	for _, cg := range f.Comments {
		if !x.used[cg] {
			x.add(cg, Block{Decl: DeclFile})
		}
	}

	slices.SortStableFunc(out.Blocks, func(a, b Block) int {
		return a.Line - b.Line
	})

	return out, nil
}

type goExtractor struct {
	fset *token.FileSet
	file *File
	used map[*ast.CommentGroup]bool
}

func (x *goExtractor) addImport(imp *ast.ImportSpec) {
	if imp.Name == nil || imp.Name.Name == "_" || imp.Name.Name == "." {
		return
	}

	p, err := strconv.Unquote(imp.Path.Value)
	if err != nil {
		return
	}

	if x.file.Aliases == nil {
		x.file.Aliases = make(map[string]string)
	}

	x.file.Aliases[imp.Name.Name] = p
}

func (x *goExtractor) genDecl(d *ast.GenDecl) {
	declKind := map[token.Token]string{
		token.TYPE:  DeclType,
		token.CONST: DeclConst,
		token.VAR:   DeclVar,
	}[d.Tok]

	if declKind == "" {
		return
	}

	for i, spec := range d.Specs {
		// A lone spec is documented by the declaration's comment.
		doc := specDoc(spec)
		if doc == nil && i == 0 && len(d.Specs) == 1 {
			doc = d.Doc
		}

		switch s := spec.(type) {
		case *ast.TypeSpec:
			x.add(doc, Block{Symbol: s.Name.Name, Decl: declKind})

			if st, ok := s.Type.(*ast.StructType); ok {
				x.fields(s.Name.Name, st)
			}

		case *ast.ValueSpec:
			x.add(doc, Block{Symbol: s.Names[0].Name, Decl: declKind})

			if d.Tok == token.CONST {
				x.constants(s)
			}
		}
	}

	if len(d.Specs) > 1 {
		x.add(d.Doc, Block{Decl: declKind})
	}
}

func (x *goExtractor) fields(parent string, st *ast.StructType) {
	for _, field := range st.Fields.List {
		name := ""
		if len(field.Names) > 0 {
			name = field.Names[0].Name
		} else if id, ok := field.Type.(*ast.Ident); ok {
			name = id.Name
		}

		b := Block{Symbol: name, Parent: parent, Decl: DeclField, Field: jsonName(field, name)}

		x.add(field.Doc, b)
		x.add(field.Comment, b)
	}
}

func (x *goExtractor) constants(s *ast.ValueSpec) {
	for i, name := range s.Names {
		if i >= len(s.Values) {
			return
		}

		if c, ok := literal(s.Values[i]); ok {
			c.Name = name.Name
			x.file.Constants = append(x.file.Constants, c)
		}
	}
}

// add records cg as a block when it carries a tag.
func (x *goExtractor) add(cg *ast.CommentGroup, b Block) {
	if cg == nil || x.used[cg] {
		return
	}

	x.used[cg] = true

	raw := make([]string, 0, len(cg.List))
	for _, c := range cg.List {
		raw = append(raw, c.Text)
	}

	text := docblock.Clean(strings.Join(raw, "\n"))
	if !strings.Contains(text, "@") {
		return
	}

	b.Text = text
	b.Line = x.fset.Position(cg.Pos()).Line
	x.file.Blocks = append(x.file.Blocks, b)
}

func specDoc(spec ast.Spec) *ast.CommentGroup {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Doc
	case *ast.ValueSpec:
		return s.Doc
	}

	return nil
}

func funcName(d *ast.FuncDecl) string {
	if d.Recv == nil || len(d.Recv.List) == 0 {
		return d.Name.Name
	}

	return receiverName(d.Recv.List[0].Type) + "." + d.Name.Name
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	}

	return ""
}

func jsonName(field *ast.Field, name string) string {
	if field.Tag == nil {
		return name
	}

	tag, err := strconv.Unquote(field.Tag.Value)
	if err != nil {
		return name
	}

	jsonTag, _, _ := strings.Cut(reflect.StructTag(tag).Get("json"), ",")
	if jsonTag == "" || jsonTag == "-" {
		return name
	}

	return jsonTag
}

func literal(expr ast.Expr) (Constant, bool) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind == token.CHAR || e.Kind == token.IMAG {
			return Constant{}, false
		}

		return Constant{Kind: e.Kind, Raw: e.Value}, true

	case *ast.UnaryExpr:
		lit, ok := e.X.(*ast.BasicLit)
		if !ok || e.Op != token.SUB || (lit.Kind != token.INT && lit.Kind != token.FLOAT) {
			return Constant{}, false
		}

		return Constant{Kind: lit.Kind, Raw: "-" + lit.Value}, true

	case *ast.Ident:
		if e.Name == "true" || e.Name == "false" {
			return Constant{Kind: token.IDENT, Raw: e.Name}, true
		}

	case *ast.ParenExpr:
		return literal(e.X)
	}

	return Constant{}, false
}

// extractDocComments scans non-Go sources for /** ... */ comments.
func extractDocComments(filename string, src []byte) *File {
	out := &File{Path: filename}

	rest := src
	line := 1

	for {
		start := bytes.Index(rest, []byte("/**"))
		if start < 0 {
			break
		}

		line += bytes.Count(rest[:start], []byte("\n"))

		end := bytes.Index(rest[start+3:], []byte("*/"))
		if end < 0 {
			break
		}

		raw := rest[start : start+3+end+2]

		text := docblock.Clean(string(raw))
		if strings.Contains(text, "@") {
			out.Blocks = append(out.Blocks, Block{Text: text, Line: line, Decl: DeclFile})
		}

		line += bytes.Count(raw, []byte("\n"))
		rest = rest[start+len(raw):]
	}

	return out
}
