// Package directive parses the //reflect: comment directives that drive
// provider generation.
//
// Type level:
//
//	//reflect:generate [all|attributes|methods]
//	//reflect:class_name NAME
//	//reflect:parents A, pkg.B
//	//reflect:used_types int, *pkg.T
//
// Member level (fields, embedded fields and methods):
//
//	//reflect:on
//	//reflect:off
//	//reflect:readonly
//	//reflect:metadata "key", value, ...
package directive
