package gen

import "text/template"

// templateData holds everything the provider template renders.
type templateData struct {
	Header       string
	PackageName  string
	StdImports   []importSpec
	OtherImports []importSpec
	Reflection   string // name the reflection package is imported under
	Types        []typeData
}

// typeData is one registration. Entries are rendered Go expressions.
type typeData struct {
	Name       string
	ClassName  string // quoted
	Attributes []string
	Methods    []string
	Parents    []string
	UsedTypes  []string
}

var providerTemplate = template.Must(
	template.New("provider").
		Parse(`{{.Header}}

package {{.PackageName}}

import (
{{range .StdImports}}	{{.}}
{{end}}{{if and .StdImports .OtherImports}}
{{end}}{{range .OtherImports}}	{{.}}
{{end}})

func init() {
{{- range $i, $t := .Types}}
{{- if $i}}
{{end}}
	{{$.Reflection}}.Register[{{$t.Name}}]({{$.Reflection}}.Info{
		ClassName: {{$t.ClassName}},
{{- if $t.Attributes}}
		Attributes: []{{$.Reflection}}.AttributeDescriptor{
{{- range $t.Attributes}}
			{{.}},
{{- end}}
		},
{{- end}}
{{- if $t.Methods}}
		Methods: []{{$.Reflection}}.MethodDescriptor{
{{- range $t.Methods}}
			{{.}},
{{- end}}
		},
{{- end}}
{{- if $t.Parents}}
		Parents: []{{$.Reflection}}.ParentDescriptor{
{{- range $t.Parents}}
			{{.}},
{{- end}}
		},
{{- end}}
{{- if $t.UsedTypes}}
		UsedTypes: []{{$.Reflection}}.UsedTypeDescriptor{
{{- range $t.UsedTypes}}
			{{.}},
{{- end}}
		},
{{- end}}
	})
{{- end}}
}
`))
