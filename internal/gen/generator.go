package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"typereflect/internal/analyze"
)

// DefaultReflectionPath is the import path of the runtime package generated
// providers register with.
const DefaultReflectionPath = "typereflect/reflection"

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Suffix replaces ".go" in the source file name to name the generated file.
	Suffix string
	// ReflectionPath is the import path of the reflection package.
	ReflectionPath string
	// DebugUnformatted writes a .unformatted.go sidecar when formatting fails.
	DebugUnformatted bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Suffix:           analyze.DefaultSuffix,
		ReflectionPath:   DefaultReflectionPath,
		DebugUnformatted: true,
	}
}

// Generator renders provider registrations for the types of a TypeGraph.
type Generator struct {
	config GeneratorConfig
	logger *zap.Logger
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig, logger *zap.Logger) *Generator {
	if config.Suffix == "" {
		config.Suffix = analyze.DefaultSuffix
	}

	if config.ReflectionPath == "" {
		config.ReflectionPath = DefaultReflectionPath
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{config: config, logger: logger}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Dir is the directory of the package the file belongs to.
	Dir string
	// Filename is the name of the file (e.g., "shapes_reflection.go").
	Filename string
	// Source is the path of the file the registered types are declared in.
	Source string
	// Types lists the registered types in source order.
	Types []string
	// Content is the formatted Go source code.
	Content []byte
}

// Path returns the full path of the file.
func (f GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

// Generate renders one file per source file with annotated types. It refuses
// to generate from a graph with error diagnostics.
func (g *Generator) Generate(graph *analyze.TypeGraph) ([]GeneratedFile, error) {
	if err := graph.Diagnostics.Error(); err != nil {
		return nil, fmt.Errorf("type graph has errors: %w", err)
	}

	paths := make([]string, 0, len(graph.Packages))
	for p := range graph.Packages {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	var files []GeneratedFile

	for _, p := range paths {
		pkg := graph.Packages[p]

		for _, fi := range pkg.Files {
			file, err := g.generateFile(graph, pkg, fi)
			if err != nil {
				return nil, fmt.Errorf("generating %s: %w", fi.Path, err)
			}

			files = append(files, *file)
		}
	}

	g.logger.Info("providers generated", zap.Int("files", len(files)))

	return files, nil
}

// OutputName returns the generated file name for a source file.
func (g *Generator) OutputName(source string) string {
	return strings.TrimSuffix(filepath.Base(source), ".go") + g.config.Suffix
}

// generateFile renders the providers of the types declared in one file.
func (g *Generator) generateFile(graph *analyze.TypeGraph, pkg *analyze.PackageInfo, fi *analyze.FileInfo) (*GeneratedFile, error) {
	var infos []*analyze.TypeInfo

	for _, id := range fi.Types {
		if info := graph.GetType(id); info != nil {
			infos = append(infos, info)
		}
	}

	data := g.buildTemplateData(pkg, infos)

	file := &GeneratedFile{
		Dir:      pkg.Dir,
		Filename: g.OutputName(fi.Path),
		Source:   fi.Path,
	}

	for _, t := range data.Types {
		file.Types = append(file.Types, t.Name)
	}

	var buf bytes.Buffer
	if err := providerTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		// Best-effort: keep the unformatted code next to the output to aid
		// debugging.
		if g.config.DebugUnformatted {
			_ = writeDebugUnformatted(file.Dir, file.Filename, buf.Bytes())
		}

		file.Content = buf.Bytes()

		return file, fmt.Errorf("formatting code: %w (unformatted code returned)", err)
	}

	file.Content = formatted

	g.logger.Debug("provider file rendered",
		zap.String("file", file.Path()),
		zap.Strings("types", file.Types),
	)

	return file, nil
}

// buildTemplateData resolves every name the file needs against one import set.
func (g *Generator) buildTemplateData(pkg *analyze.PackageInfo, infos []*analyze.TypeInfo) *templateData {
	imports := newImportSet(pkg.Path)

	// Metadata expressions are copied verbatim, so their package names are
	// claimed before anything else.
	for _, info := range infos {
		names := make([]string, 0, len(info.Imports))
		for name := range info.Imports {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			imports.use(name, info.Imports[name])
		}
	}

	r := imports.add(g.config.ReflectionPath, "reflection")

	data := &templateData{
		Header:      analyze.GeneratedHeader,
		PackageName: pkg.Name,
		Reflection:  r,
	}

	for _, info := range infos {
		data.Types = append(data.Types, g.buildType(imports, r, info))
	}

	data.StdImports, data.OtherImports = imports.specs()

	return data
}

func (g *Generator) buildType(imports *importSet, r string, info *analyze.TypeInfo) typeData {
	name := imports.typeString(info.GoType)

	t := typeData{
		Name:      name,
		ClassName: strconv.Quote(info.ClassName),
	}

	for _, f := range info.Attributes {
		ctor := "Field"
		if f.ReadOnly {
			ctor = "ReadOnlyField"
		}

		t.Attributes = append(t.Attributes, fmt.Sprintf("%s.%s(%q, func(v *%s) *%s { return &v.%s }%s)",
			r, ctor, f.Name, name, imports.typeString(f.Type), f.Name, metadataArgs(f.Metadata)))
	}

	for _, m := range info.Methods {
		expr := name + "." + m.Name
		if m.PointerReceiver {
			expr = "(*" + name + ")." + m.Name
		}

		t.Methods = append(t.Methods, fmt.Sprintf("%s.Method[%s](%q, %s%s)",
			r, name, m.Name, expr, metadataArgs(m.Metadata)))
	}

	for _, p := range info.Parents {
		t.Parents = append(t.Parents, fmt.Sprintf("%s.Parent[%s](%s)",
			r, imports.typeString(p.Type), strings.Join(p.Metadata, ", ")))
	}

	for _, u := range info.UsedTypes {
		t.UsedTypes = append(t.UsedTypes, fmt.Sprintf("%s.Uses[%s](%s)",
			r, imports.typeString(u.Type), strings.Join(u.Metadata, ", ")))
	}

	return t
}

func metadataArgs(exprs []string) string {
	if len(exprs) == 0 {
		return ""
	}

	return ", " + strings.Join(exprs, ", ")
}
