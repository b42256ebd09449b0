package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolah/specmodel/internal/config"
	"github.com/kolah/specmodel/internal/model"
	"github.com/kolah/specmodel/internal/parser"
	"github.com/spf13/cobra"
)

func InspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [spec]",
		Short: "Print the endpoints and named data types of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInspect,
	}

	config.BindCommonFlags(cmd)

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd, args)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	spec, err := parser.Parse(cmd.Context(), cfg.Spec, cfg.ParserOptions(logger)...)
	if err != nil {
		return err
	}

	writeSpecification(cmd.OutOrStdout(), spec)
	return nil
}

func writeSpecification(w io.Writer, spec *model.Specification) {
	fmt.Fprintf(w, "Endpoints: %d\n", len(spec.Endpoints))
	for _, e := range spec.Endpoints {
		fmt.Fprintf(w, "  %s %s", e.Method, e.Path.Path)
		if e.OperationID != "" {
			fmt.Fprintf(w, " (%s)", e.OperationID)
		}
		fmt.Fprintln(w)

		for _, p := range e.Path.Parameters {
			required := ""
			if p.Required {
				required = ", required"
			}
			fmt.Fprintf(w, "    param %s (%s%s): %s\n", p.Name, p.Location, required, typeName(p.DataType))
		}
		if e.RequestBody != nil {
			fmt.Fprintf(w, "    body %s: %s\n", e.RequestBody.Content.MediaType, typeName(e.RequestBody.Content.DataType))
		}
		for _, r := range e.Responses {
			if r.Content == nil {
				fmt.Fprintf(w, "    %s: no content\n", r.StatusCode)
				continue
			}
			fmt.Fprintf(w, "    %s %s: %s\n", r.StatusCode, r.Content.MediaType, typeName(r.Content.DataType))
		}
	}

	types := spec.DataTypes()
	fmt.Fprintf(w, "Data types: %d\n", len(types))
	for _, dt := range types {
		fmt.Fprintf(w, "  %s: %s\n", dt.Base().Name, model.Visit[string](dt, definition{}))
	}
}

// typeName refers to named types by name and spells out anonymous ones.
func typeName(dt model.DataType) string {
	if name := dt.Base().Name; name != "" {
		return name
	}
	return model.Visit[string](dt, definition{})
}

// definition renders the shape of a data type, one level deep.
type definition struct{}

func withFormat(kind, format string) string {
	if format == "" {
		return kind
	}
	return kind + "(" + format + ")"
}

func nullable(dt model.DataType, s string) string {
	if dt.Base().IsNullable {
		return s + "?"
	}
	return s
}

func (definition) String(s model.String) string {
	out := withFormat("string", s.Format)
	if len(s.Enumerators) > 0 {
		values := make([]string, len(s.Enumerators))
		for i, e := range s.Enumerators {
			values[i] = e.Value
		}
		out += " enum[" + strings.Join(values, ", ") + "]"
	}
	return nullable(s, out)
}

func (definition) Number(n model.Number) string {
	return nullable(n, withFormat("number", n.Format))
}

func (definition) Integer(i model.Integer) string {
	return nullable(i, withFormat("integer", i.Format))
}

func (definition) Boolean(b model.Boolean) string {
	return nullable(b, "boolean")
}

func (definition) Object(o model.Object) string {
	fields := make([]string, 0, len(o.Properties)+1)
	for _, p := range o.Properties {
		name := p.Name
		if !p.IsRequired {
			name += "?"
		}
		fields = append(fields, name+": "+typeName(p.DataType))
	}
	if o.AdditionalProperties {
		fields = append(fields, "...")
	}
	return nullable(o, "{"+strings.Join(fields, ", ")+"}")
}

func (definition) Array(a model.Array) string {
	return nullable(a, "["+typeName(a.ItemType)+"]")
}

func (definition) OneOf(u model.OneOf) string {
	return nullable(u, members(u.DataTypes, " | "))
}

func (definition) AnyOf(u model.AnyOf) string {
	return nullable(u, "anyOf("+members(u.DataTypes, ", ")+")")
}

func (definition) AllOf(u model.AllOf) string {
	return nullable(u, members(u.DataTypes, " & "))
}

func members(dts []model.DataType, sep string) string {
	names := make([]string, len(dts))
	for i, dt := range dts {
		names[i] = typeName(dt)
	}
	return strings.Join(names, sep)
}
