package analyze

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"typereflect/internal/diagnostic"
	"typereflect/internal/directive"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// DefaultSuffix is appended to a source file's base name to name its
// generated provider file.
const DefaultSuffix = "_reflection.go"

// Analyzer loads Go packages and collects the types annotated with
// //reflect: directives.
type Analyzer struct {
	graph  *TypeGraph
	logger *zap.Logger
	dir    string
	suffix string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDir sets the directory patterns are resolved from.
func WithDir(dir string) Option {
	return func(a *Analyzer) { a.dir = dir }
}

// WithSuffix sets the suffix of generated files, which are ignored while
// scanning.
func WithSuffix(suffix string) Option {
	return func(a *Analyzer) {
		if suffix != "" {
			a.suffix = suffix
		}
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:  NewTypeGraph(),
		logger: zap.NewNop(),
		suffix: DefaultSuffix,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// LoadPackages loads the specified packages and collects annotated types.
// Patterns are standard Go package patterns (e.g., "./...", "typereflect/examples/shapes").
// Problems with annotations are recorded in the graph's Diagnostics; the
// error is reserved for packages that fail to load.
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	overlay, err := a.generatedOverlay(patterns)
	if err != nil {
		return nil, err
	}

	cfg := &packages.Config{
		Mode:      LoadMode,
		Dir:       a.dir,
		ParseFile: a.parseFile,
		Overlay:   overlay,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	a.graph.checkCycles()

	a.logger.Info("packages analyzed",
		zap.Strings("patterns", patterns),
		zap.Int("types", len(a.graph.Types)),
		zap.Int("errors", len(a.graph.Diagnostics.Errors)),
		zap.Int("warnings", len(a.graph.Diagnostics.Warnings)),
	)

	return a.graph, nil
}

// generatedOverlay replaces every previously generated provider of the
// matched packages by its header and package clause. go list compiles the
// packages to produce export data and reads sources from the overlay, so a
// provider that still registers a removed type does not fail the load.
func (a *Analyzer) generatedOverlay(patterns []string) (map[string][]byte, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	overlay := make(map[string][]byte)

	for _, pkg := range pkgs {
		if pkg.Name == "" {
			continue
		}

		for _, filename := range pkg.GoFiles {
			if !strings.HasSuffix(filename, a.suffix) {
				continue
			}

			src, err := os.ReadFile(filename)
			if err != nil || !a.isGenerated(filename, src) {
				continue
			}

			overlay[filename] = []byte(GeneratedHeader + "\n\npackage " + pkg.Name + "\n")
		}
	}

	a.logger.Debug("generated files masked", zap.Int("files", len(overlay)))

	return overlay, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// parseFile parses source files with comments. Previously generated provider
// files are reduced to their package clause so stale registrations never
// break type checking.
func (a *Analyzer) parseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	mode := parser.AllErrors | parser.ParseComments
	if a.isGenerated(filename, src) {
		mode = parser.PackageClauseOnly
	}

	return parser.ParseFile(fset, filename, src, mode)
}

func (a *Analyzer) isGenerated(filename string, src []byte) bool {
	return strings.HasSuffix(filename, a.suffix) && bytes.HasPrefix(src, []byte(GeneratedHeader))
}

// scope is the context a declaration is analyzed in.
type scope struct {
	pkg     *packages.Package
	imports map[string]string // file-level package name -> import path
}

// processPackage extracts annotated types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
	}

	if len(pkg.GoFiles) > 0 {
		pkgInfo.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	methods := collectMethods(pkg)

	for _, file := range pkg.Syntax {
		filename := pkg.Fset.Position(file.Package).Filename
		if file.Decls == nil && strings.HasSuffix(filename, a.suffix) {
			continue
		}

		sc := scope{pkg: pkg, imports: fileImports(pkg, file)}
		fileInfo := &FileInfo{Path: filename}

		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)

				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}

				info := a.processTypeSpec(sc, ts, directive.Parse(doc, ts.Comment), methods[ts.Name.Name])
				if info == nil {
					continue
				}

				info.File = filename
				a.graph.Types[info.ID] = info
				fileInfo.Types = append(fileInfo.Types, info.ID)
			}
		}

		if len(fileInfo.Types) > 0 {
			pkgInfo.Files = append(pkgInfo.Files, fileInfo)
		}
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo

	a.logger.Debug("package scanned",
		zap.String("package", pkg.PkgPath),
		zap.Int("files", len(pkgInfo.Files)),
	)
}

// collectMethods groups method declarations by receiver base type name, in
// file and source order.
func collectMethods(pkg *packages.Package) map[string][]*ast.FuncDecl {
	methods := make(map[string][]*ast.FuncDecl)

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 {
				continue
			}

			if name := receiverBase(fd.Recv.List[0].Type); name != "" {
				methods[name] = append(methods[name], fd)
			}
		}
	}

	return methods
}

func receiverBase(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverBase(e.X)
	case *ast.ParenExpr:
		return receiverBase(e.X)
	case *ast.IndexExpr:
		return receiverBase(e.X)
	case *ast.IndexListExpr:
		return receiverBase(e.X)
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}

// fileImports maps the names a file refers to its imports by.
func fileImports(pkg *packages.Package, file *ast.File) map[string]string {
	imports := make(map[string]string)

	for _, spec := range file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		var name string

		switch {
		case spec.Name != nil:
			name = spec.Name.Name
		case pkg.Imports[p] != nil:
			name = pkg.Imports[p].Name
		default:
			name = path.Base(p)
		}

		if name == "_" || name == "." {
			continue
		}

		imports[name] = p
	}

	return imports
}

// processTypeSpec analyzes one type declaration. It returns nil for types
// that are not annotated or cannot be reflected.
func (a *Analyzer) processTypeSpec(sc scope, ts *ast.TypeSpec, set directive.Set, methods []*ast.FuncDecl) *TypeInfo {
	pkg := sc.pkg
	diags := &a.graph.Diagnostics
	id := TypeID{PkgPath: pkg.PkgPath, Name: ts.Name.Name}
	pos := pkg.Fset.Position(ts.Pos()).String()

	gen, ok := set.Lookup(directive.Generate)
	if !ok {
		if len(set) > 0 {
			diags.AddWarning(diagnostic.CodeBadDirective,
				"directives without //reflect:generate are ignored", id.String(), "").At(pos)
		}

		return nil
	}

	a.checkUnknown(set, directive.TypeLevel, id.String(), "", pkg.Fset)

	if ts.TypeParams != nil {
		diags.AddWarning(diagnostic.CodeGenericType,
			"generic types cannot be registered and are skipped", id.String(), "").At(pos)

		return nil
	}

	if ts.Assign.IsValid() {
		diags.AddWarning(diagnostic.CodeUnrepresentable,
			"aliases share the identity of their target and are skipped", id.String(), "").At(pos)

		return nil
	}

	obj, ok := pkg.TypesInfo.Defs[ts.Name].(*types.TypeName)
	if !ok {
		return nil
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil
	}

	mode, err := ParseMode(gen.Args)
	if err != nil {
		diags.AddError(diagnostic.CodeBadDirective, err.Error(), id.String(), "").At(pos)
	}

	info := &TypeInfo{
		ID:        id,
		ClassName: obj.Name(),
		Mode:      mode,
		Pos:       pos,
		Imports:   make(map[string]string),
		GoType:    named,
	}

	if cn, ok := set.Lookup(directive.ClassName); ok {
		if name := unquote(cn.Args); name != "" {
			info.ClassName = name
		} else {
			diags.AddError(diagnostic.CodeBadDirective, "class_name needs a name", id.String(), "").At(pos)
		}
	}

	if st, ok := ts.Type.(*ast.StructType); ok {
		a.processFields(sc, info, st, named.Underlying().(*types.Struct))
	}

	a.processMethods(sc, info, methods)
	a.processParents(sc, info, ts, set)
	a.processUsedTypes(sc, info, ts, set)

	if len(info.Attributes)+len(info.Methods)+len(info.Parents)+len(info.UsedTypes) == 0 {
		diags.AddInfo(diagnostic.CodeNoMembers, "nothing to reflect besides the class name", id.String(), "").At(pos)
	}

	return info
}

// processFields collects attributes and embedded parents of a struct.
func (a *Analyzer) processFields(sc scope, info *TypeInfo, st *ast.StructType, tst *types.Struct) {
	idx := 0

	for _, field := range st.Fields.List {
		set := directive.Parse(field.Doc, field.Comment)

		n := len(field.Names)
		if n == 0 {
			n = 1
		}

		for range n {
			v := tst.Field(idx)
			idx++

			a.checkUnknown(set, directive.MemberLevel, info.ID.String(), v.Name(), sc.pkg.Fset)

			if v.Embedded() {
				a.embeddedParent(sc, info, v, set)
				continue
			}

			if v.Name() == "_" || !include(set, info.Mode.IncludesAttributes(), v.Exported()) {
				continue
			}

			if !representable(v.Type(), sc.pkg.Types) {
				a.graph.Diagnostics.AddWarning(diagnostic.CodeUnrepresentable,
					fmt.Sprintf("field type %s cannot be named here; field skipped", v.Type()),
					info.ID.String(), v.Name()).At(sc.pkg.Fset.Position(v.Pos()).String())

				continue
			}

			info.Attributes = append(info.Attributes, FieldInfo{
				Name:     v.Name(),
				Type:     v.Type(),
				Exported: v.Exported(),
				ReadOnly: set.Has(directive.ReadOnly),
				Index:    idx - 1,
				Metadata: a.metadata(sc, info, v.Name(), set),
			})
		}
	}
}

// embeddedParent turns an embedded named type into a parent relation.
func (a *Analyzer) embeddedParent(sc scope, info *TypeInfo, v *types.Var, set directive.Set) {
	if set.Has(directive.Off) {
		return
	}

	t := v.Type()
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}

	named, ok := t.(*types.Named)
	if !ok || types.IsInterface(named) {
		return
	}

	if named.TypeArgs().Len() > 0 || !representable(named, sc.pkg.Types) {
		a.graph.Diagnostics.AddWarning(diagnostic.CodeUnrepresentable,
			fmt.Sprintf("embedded %s cannot be declared as a parent", named),
			info.ID.String(), v.Name()).At(sc.pkg.Fset.Position(v.Pos()).String())

		return
	}

	info.Parents = append(info.Parents, RelationInfo{
		Name:     v.Name(),
		Type:     named,
		Embedded: true,
		Metadata: a.metadata(sc, info, v.Name(), set),
	})
}

// processMethods collects the reflected methods of a type.
func (a *Analyzer) processMethods(sc scope, info *TypeInfo, decls []*ast.FuncDecl) {
	for _, fd := range decls {
		fn, ok := sc.pkg.TypesInfo.Defs[fd.Name].(*types.Func)
		if !ok || fd.Name.Name == "_" {
			continue
		}

		set := directive.Parse(fd.Doc)
		a.checkUnknown(set, directive.MemberLevel, info.ID.String(), fn.Name(), sc.pkg.Fset)

		if set.Has(directive.ReadOnly) {
			a.graph.Diagnostics.AddWarning(diagnostic.CodeBadDirective,
				"readonly applies to fields only", info.ID.String(), fn.Name())
		}

		// A type that provides for itself is not reflected through its
		// provider method.
		if fn.Name() == "TypeInfo" || !include(set, info.Mode.IncludesMethods(), fn.Exported()) {
			continue
		}

		sig := fn.Type().(*types.Signature)
		_, ptr := sig.Recv().Type().(*types.Pointer)

		info.Methods = append(info.Methods, MethodInfo{
			Name:            fn.Name(),
			PointerReceiver: ptr,
			Signature:       sig,
			Metadata:        a.metadata(sc, info, fn.Name(), set),
		})
	}
}

// processParents resolves the parents directive. Parents already known from
// embedding are not repeated.
func (a *Analyzer) processParents(sc scope, info *TypeInfo, ts *ast.TypeSpec, set directive.Set) {
	for _, d := range set.All(directive.Parents) {
		for _, name := range a.typeList(sc, info, d) {
			t, ok := a.evalType(sc, info, ts, d, name)
			if !ok {
				continue
			}

			named, ok := t.(*types.Named)
			if !ok || named.TypeArgs().Len() > 0 || types.IsInterface(named) {
				a.graph.Diagnostics.AddError(diagnostic.CodeBadParent,
					fmt.Sprintf("parent %s must be a non-generic named type", name),
					info.ID.String(), "").At(sc.pkg.Fset.Position(d.Pos).String())

				continue
			}

			if hasParent(info, named) {
				continue
			}

			if !isEmbedded(info.GoType, named) {
				a.graph.Diagnostics.AddWarning(diagnostic.CodeDetachedParent,
					fmt.Sprintf("%s is not embedded; its members are listed but cannot be bound to instances", name),
					info.ID.String(), "").At(sc.pkg.Fset.Position(d.Pos).String())
			}

			info.Parents = append(info.Parents, RelationInfo{Name: name, Type: named})
		}
	}
}

// processUsedTypes resolves the used_types directive.
func (a *Analyzer) processUsedTypes(sc scope, info *TypeInfo, ts *ast.TypeSpec, set directive.Set) {
	for _, d := range set.All(directive.UsedTypes) {
		for _, name := range a.typeList(sc, info, d) {
			t, ok := a.evalType(sc, info, ts, d, name)
			if !ok {
				continue
			}

			if !representable(t, sc.pkg.Types) {
				a.graph.Diagnostics.AddWarning(diagnostic.CodeUnrepresentable,
					fmt.Sprintf("used type %s cannot be named here", name),
					info.ID.String(), "").At(sc.pkg.Fset.Position(d.Pos).String())

				continue
			}

			info.UsedTypes = append(info.UsedTypes, RelationInfo{Name: name, Type: t})
		}
	}
}

func (a *Analyzer) typeList(sc scope, info *TypeInfo, d directive.Directive) []string {
	names, err := directive.SplitList(d.Args)
	if err == nil && len(names) == 0 {
		err = fmt.Errorf("%s needs at least one type", d.Name)
	}

	if err != nil {
		a.graph.Diagnostics.AddError(diagnostic.CodeBadDirective, err.Error(),
			info.ID.String(), "").At(sc.pkg.Fset.Position(d.Pos).String())

		return nil
	}

	return names
}

// evalType resolves a type expression in the scope of the declaring file.
func (a *Analyzer) evalType(sc scope, info *TypeInfo, ts *ast.TypeSpec, d directive.Directive, expr string) (types.Type, bool) {
	tv, err := types.Eval(sc.pkg.Fset, sc.pkg.Types, ts.Pos(), expr)
	if err == nil && tv.IsType() {
		return tv.Type, true
	}

	msg := fmt.Sprintf("unknown type %q", expr)
	if err == nil {
		msg = fmt.Sprintf("%q is not a type", expr)
	}

	a.graph.Diagnostics.AddError(diagnostic.CodeUnknownType, msg, info.ID.String(), "").
		At(sc.pkg.Fset.Position(d.Pos).String()).
		Suggest(expr, knownTypeNames(sc))

	return nil, false
}

// metadata parses the metadata directives of a member and records the
// packages its expressions refer to.
func (a *Analyzer) metadata(sc scope, info *TypeInfo, member string, set directive.Set) []string {
	var out []string

	for _, d := range set.All(directive.Metadata) {
		exprs, err := directive.ParseMetadata(d.Args)
		if err != nil {
			a.graph.Diagnostics.AddError(diagnostic.CodeBadMetadata, err.Error(),
				info.ID.String(), member).At(sc.pkg.Fset.Position(d.Pos).String())

			continue
		}

		out = append(out, exprs...)
	}

	for _, name := range directive.QualifiedIdents(out) {
		if p, ok := sc.imports[name]; ok {
			info.Imports[name] = p
		}
	}

	return out
}

func (a *Analyzer) checkUnknown(set directive.Set, known []string, typeName, member string, fset *token.FileSet) {
	all := append(append([]string{}, directive.TypeLevel...), directive.MemberLevel...)

	for _, d := range set.Unknown(known) {
		pos := fset.Position(d.Pos).String()

		if slices.Contains(all, d.Name) {
			a.graph.Diagnostics.AddWarning(diagnostic.CodeBadDirective,
				fmt.Sprintf("//reflect:%s is not valid here", d.Name), typeName, member).At(pos)

			continue
		}

		a.graph.Diagnostics.AddWarning(diagnostic.CodeUnknownDirective,
			fmt.Sprintf("unknown directive //reflect:%s", d.Name), typeName, member).
			At(pos).
			Suggest(d.Name, known)
	}
}

// include decides whether a member is reflected: off always excludes, on
// always includes, otherwise exported members of included facets are.
func include(set directive.Set, facet, exported bool) bool {
	switch {
	case set.Has(directive.Off):
		return false
	case set.Has(directive.On):
		return true
	default:
		return facet && exported
	}
}

func hasParent(info *TypeInfo, t types.Type) bool {
	for _, p := range info.Parents {
		if types.Identical(p.Type, t) {
			return true
		}
	}

	return false
}

// isEmbedded reports whether parent is embedded in t, by value or pointer.
func isEmbedded(t *types.Named, parent *types.Named) bool {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return false
	}

	for f := range st.Fields() {
		if !f.Embedded() {
			continue
		}

		ft := f.Type()
		if p, ok := ft.(*types.Pointer); ok {
			ft = p.Elem()
		}

		if types.Identical(ft, parent) {
			return true
		}
	}

	return false
}

// relationID returns the TypeID of a named relation target.
func relationID(r RelationInfo) TypeID {
	named, ok := r.Type.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return TypeID{}
	}

	return TypeID{PkgPath: named.Obj().Pkg().Path(), Name: named.Obj().Name()}
}

// representable reports whether t can be spelled in a file of pkg: every
// named type it mentions is exported, predeclared or declared in pkg.
func representable(t types.Type, pkg *types.Package) bool {
	switch tt := t.(type) {
	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() != nil && obj.Pkg() != pkg && !obj.Exported() {
			return false
		}

		for at := range tt.TypeArgs().Types() {
			if !representable(at, pkg) {
				return false
			}
		}

		return true
	case *types.Alias:
		return representable(types.Unalias(tt), pkg)
	case *types.Pointer:
		return representable(tt.Elem(), pkg)
	case *types.Slice:
		return representable(tt.Elem(), pkg)
	case *types.Array:
		return representable(tt.Elem(), pkg)
	case *types.Chan:
		return representable(tt.Elem(), pkg)
	case *types.Map:
		return representable(tt.Key(), pkg) && representable(tt.Elem(), pkg)
	case *types.Signature:
		return representableTuple(tt.Params(), pkg) && representableTuple(tt.Results(), pkg)
	case *types.Struct:
		for f := range tt.Fields() {
			if !representable(f.Type(), pkg) {
				return false
			}

			if !f.Exported() && f.Pkg() != pkg {
				return false
			}
		}

		return true
	case *types.Interface:
		for m := range tt.Methods() {
			if !m.Exported() && m.Pkg() != pkg {
				return false
			}
		}

		return true
	case *types.TypeParam:
		return false
	default:
		return true
	}
}

func representableTuple(tuple *types.Tuple, pkg *types.Package) bool {
	for v := range tuple.Variables() {
		if !representable(v.Type(), pkg) {
			return false
		}
	}

	return true
}

// knownTypeNames lists the type names visible in a file, for suggestions.
func knownTypeNames(sc scope) []string {
	var names []string

	for _, name := range types.Universe.Names() {
		if _, ok := types.Universe.Lookup(name).(*types.TypeName); ok {
			names = append(names, name)
		}
	}

	scopeTypes := func(s *types.Scope, prefix string, exportedOnly bool) {
		for _, name := range s.Names() {
			obj, ok := s.Lookup(name).(*types.TypeName)
			if !ok || (exportedOnly && !obj.Exported()) {
				continue
			}

			names = append(names, prefix+name)
		}
	}

	scopeTypes(sc.pkg.Types.Scope(), "", false)

	for name, p := range sc.imports {
		if imp := sc.pkg.Imports[p]; imp != nil && imp.Types != nil {
			scopeTypes(imp.Types.Scope(), name+".", true)
		}
	}

	return names
}

func unquote(s string) string {
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}

	return s
}
