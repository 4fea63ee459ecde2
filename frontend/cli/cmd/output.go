package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

func (f *OutputFormat) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

func (f *OutputFormat) Set(v string) error {
	switch OutputFormat(v) {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		*f = OutputFormat(v)
		return nil
	}
	return errors.New(`must be one of "text", "json", or "yaml"`)
}

func (f *OutputFormat) Type() string {
	return "format"
}

type RenderOptions struct {
	Format OutputFormat
}

func addRenderOptions(cmd *cobra.Command, options *RenderOptions) {
	cmd.Flags().VarP(&options.Format, "output", "o", "output format (text, json, yaml)")
}

type OutputRenderer interface {
	Render(resources any, options *RenderOptions) error
}

// textRenderer is implemented by displays that have their own text layout.
type textRenderer interface {
	RenderText(w io.Writer) error
}

func getRenderer(ctx context.Context, out io.Writer) OutputRenderer {
	renderer, ok := ctx.Value(ContextKeyOutputRenderer).(OutputRenderer)
	if !ok {
		return &DefaultRenderer{out: out}
	}
	return renderer
}

type DefaultRenderer struct {
	out io.Writer
}

func (r *DefaultRenderer) Render(resources any, options *RenderOptions) error {
	format := OutputFormatText
	if options != nil && options.Format != "" {
		format = options.Format
	}

	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(r.out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resources)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(r.out)
		encoder.SetIndent(2)
		if err := encoder.Encode(resources); err != nil {
			return err
		}
		return encoder.Close()
	}

	if custom, ok := resources.(textRenderer); ok {
		return custom.RenderText(r.out)
	}
	return r.renderTable(resources)
}

func (r *DefaultRenderer) renderTable(resources any) error {
	value := reflect.ValueOf(resources)
	if !value.IsValid() {
		return nil
	}

	var items []reflect.Value
	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			items = append(items, reflect.Indirect(value.Index(i)))
		}
		if len(items) == 0 {
			return nil
		}
	default:
		items = append(items, reflect.Indirect(value))
	}

	if items[0].Kind() != reflect.Struct {
		for _, item := range items {
			fmt.Fprintln(r.out, formatCell(item))
		}
		return nil
	}

	headers := columnHeaders(items[0].Type())
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := make([]string, 0, len(headers))
		for i := 0; i < item.NumField(); i++ {
			if !item.Type().Field(i).IsExported() {
				continue
			}
			row = append(row, formatCell(item.Field(i)))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				return style.Bold(true)
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...)

	_, err := fmt.Fprintln(r.out, t.String())
	return err
}

func columnHeaders(typ reflect.Type) []string {
	headers := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		headers = append(headers, strings.ToUpper(name))
	}
	return headers
}

func formatCell(value reflect.Value) string {
	if value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return "-"
		}
		value = value.Elem()
	}

	switch v := value.Interface().(type) {
	case time.Time:
		if v.IsZero() {
			return "-"
		}
		return FormatRelativeTime(v, time.Now())
	case bool:
		if v {
			return "*"
		}
		return ""
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value.Interface())
}
