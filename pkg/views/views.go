// Package views holds the engine's view definitions: the raw alias layer
// over the physically-prefixed source tables, and the analytics layer of
// derived metric views. Definitions are plain values; executing them is the
// refresh service's job.
package views

import (
	"fmt"
	"strings"
)

const (
	// SchemaRaw is the logical namespace for the alias passthrough views.
	SchemaRaw = "raw"
	// SchemaAnalytics is the namespace for the derived metric views.
	SchemaAnalytics = "analytics"
)

// View is a single named view definition.
type View struct {
	Schema  string
	Name    string
	Body    string // one SELECT (or WITH ... SELECT), no trailing semicolon
	Comment string // optional COMMENT ON VIEW text
}

// Qualified returns the quoted schema-qualified view name.
func (v View) Qualified() string {
	return quoteIdent(v.Schema) + "." + quoteIdent(v.Name)
}

// Statements returns the DDL executed for this view on every refresh.
// Drop-then-create rather than CREATE OR REPLACE: replace fails when a new
// definition changes the column set, drop-then-create survives it.
func (v View) Statements() []string {
	stmts := []string{
		fmt.Sprintf("DROP VIEW IF EXISTS %s CASCADE", v.Qualified()),
		fmt.Sprintf("CREATE VIEW %s AS\n%s", v.Qualified(), v.Body),
	}
	if v.Comment != "" {
		stmts = append(stmts, fmt.Sprintf("COMMENT ON VIEW %s IS %s", v.Qualified(), quoteLiteral(v.Comment)))
	}
	return stmts
}

// Source describes the physical naming of the externally loaded tables.
type Source struct {
	Schema      string // schema the loader writes into, e.g. "public"
	TablePrefix string // dataset prefix on every table name, e.g. "thelook_"
}

// Table returns the quoted physical identifier for a logical table name.
func (s Source) Table(name string) string {
	return quoteIdent(s.Schema) + "." + quoteIdent(s.TablePrefix+name)
}

// RawTables are the seven source tables the alias layer exposes. The list is
// fixed: the loader provides exactly these, and downstream SQL addresses them
// as raw.<name>.
var RawTables = []string{
	"distribution_centers",
	"events",
	"inventory_items",
	"order_items",
	"orders",
	"products",
	"users",
}

// AliasViews returns the passthrough views renaming each physical source
// table into the raw namespace. No filtering, no column changes; if a
// physical table is missing the CREATE fails and the error propagates.
func AliasViews(src Source) []View {
	out := make([]View, 0, len(RawTables))
	for _, name := range RawTables {
		out = append(out, View{
			Schema:  SchemaRaw,
			Name:    name,
			Body:    fmt.Sprintf("SELECT * FROM %s", src.Table(name)),
			Comment: fmt.Sprintf("Passthrough of %s", src.TablePrefix+name),
		})
	}
	return out
}

// quoteIdent quotes a Postgres identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral quotes a Postgres string literal, doubling embedded quotes.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
