// Package config fills a flat options struct from a TOML file, the
// environment and command line flags.
//
// Fields are described with struct tags:
//
//	Mlc0Base uint64 `help:"..." default:"0xc0102000" toml:"mlc.mlc0_base" env:"MLC0_BASE"`
//
// Precedence, lowest first: default tag, TOML file, MLCSNAP_ environment
// variable, flag set on the command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smazurov/mlcsnap/internal/logging"
)

// EnvPrefix is prepended to the env tag of every option.
const EnvPrefix = "MLCSNAP_"

// option is one exported field of an options struct.
type option struct {
	field reflect.Value
	name  string
	flag  string
	toml  string
	env   string
}

func optionsOf(opts any) ([]option, error) {
	v := reflect.ValueOf(opts)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("options must be a pointer to a struct, got %T", opts)
	}
	v = v.Elem()
	t := v.Type()

	var out []option
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		out = append(out, option{
			field: v.Field(i),
			name:  sf.Name,
			flag:  flagName(sf.Name),
			toml:  sf.Tag.Get("toml"),
			env:   sf.Tag.Get("env"),
		})
	}
	return out, nil
}

// LoadConfig applies the TOML file named by the Config field and the
// environment to opts. Options whose flag was changed on cmd keep the flag
// value. A missing file is not an error.
func LoadConfig(opts any, cmd *cobra.Command) error {
	options, err := optionsOf(opts)
	if err != nil {
		return err
	}

	changed := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().Visit(func(f *pflag.Flag) {
			changed[f.Name] = true
		})
	}

	var path string
	for _, o := range options {
		if o.name == "Config" {
			path = o.field.String()
		}
	}
	tree, err := readTree(path)
	if err != nil {
		return err
	}

	var errs []error
	for _, o := range options {
		if changed[o.flag] {
			continue
		}
		if o.toml != "" {
			if value := lookup(tree, o.toml); value != nil {
				if err := setFromTOML(o.field, value); err != nil {
					errs = append(errs, fmt.Errorf("%s: %s: %w", path, o.toml, err))
				}
			}
		}
		if o.env == "" {
			continue
		}
		if s, ok := os.LookupEnv(EnvPrefix + o.env); ok && s != "" {
			if err := setFromString(o.field, s); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, o.env, err))
			}
		}
	}
	return errors.Join(errs...)
}

func readTree(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config %s: %w", path, err)
	}
	return tree, nil
}

// lookup resolves a dotted path such as "mlc.mlc0_base" in a TOML tree.
func lookup(tree map[string]any, path string) any {
	keys := strings.Split(path, ".")
	node := tree
	for _, k := range keys[:len(keys)-1] {
		next, ok := node[k].(map[string]any)
		if !ok {
			return nil
		}
		node = next
	}
	return node[keys[len(keys)-1]]
}

// flagName converts a field name to its flag: "DrmDriver" -> "drm-driver".
func flagName(fieldName string) string {
	var b strings.Builder
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// setFromTOML stores a decoded TOML value. Strings are accepted for every
// kind and parsed like environment values, so hex addresses can be quoted.
func setFromTOML(field reflect.Value, value any) error {
	if s, ok := value.(string); ok {
		return setFromString(field, s)
	}

	switch field.Kind() {
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
			return nil
		}
	case reflect.Int:
		if n, ok := value.(int64); ok {
			field.SetInt(n)
			return nil
		}
	case reflect.Uint64:
		if n, ok := value.(int64); ok && n >= 0 {
			field.SetUint(uint64(n))
			return nil
		}
	case reflect.Slice:
		if items, ok := value.([]any); ok && field.Type().Elem().Kind() == reflect.String {
			list := make([]string, 0, len(items))
			for _, item := range items {
				s, ok := item.(string)
				if !ok {
					return fmt.Errorf("list item %v is not a string", item)
				}
				list = append(list, s)
			}
			field.Set(reflect.ValueOf(list))
			return nil
		}
	}
	return fmt.Errorf("cannot use %T value %v as %s", value, value, field.Type())
}

// setFromString parses s into the field. Integers accept 0x prefixes and
// lists are comma separated.
func setFromString(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid bool %q", s)
		}
		field.SetBool(b)
	case reflect.Int:
		n, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		field.SetInt(n)
	case reflect.Uint64:
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", s)
		}
		field.SetUint(n)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported list type %s", field.Type())
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}

// LoadLoggingConfig reads the [logging] table of the file at path. Keys
// other than level and format, and the keys of a [logging.modules] table,
// are module levels. Defaults are returned when the file is missing or
// unreadable.
func LoadLoggingConfig(path string) logging.Config {
	cfg := logging.Config{Level: "info", Format: "text", Modules: make(map[string]string)}

	tree, err := readTree(path)
	if err != nil || tree == nil {
		return cfg
	}
	table, ok := tree["logging"].(map[string]any)
	if !ok {
		return cfg
	}

	for key, value := range table {
		switch v := value.(type) {
		case string:
			switch key {
			case "level":
				cfg.Level = v
			case "format":
				cfg.Format = v
			default:
				cfg.Modules[key] = v
			}
		case map[string]any:
			if key != "modules" {
				continue
			}
			for module, level := range v {
				if s, ok := level.(string); ok {
					cfg.Modules[module] = s
				}
			}
		}
	}
	return cfg
}
