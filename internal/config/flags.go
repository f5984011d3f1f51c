package config

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/spf13/pflag"
)

// BindFlags registers one flag per field of the struct pointed to by opts.
// Usage comes from the help tag, the shorthand from short and the default
// from default. Fields are updated in place when flags are parsed.
func BindFlags(fs *pflag.FlagSet, opts any) error {
	options, err := optionsOf(opts)
	if err != nil {
		return err
	}

	v := reflect.ValueOf(opts).Elem()
	t := v.Type()
	for _, o := range options {
		sf, _ := t.FieldByName(o.name)
		help, short, def := sf.Tag.Get("help"), sf.Tag.Get("short"), sf.Tag.Get("default")
		ptr := o.field.Addr().Interface()

		switch p := ptr.(type) {
		case *string:
			fs.StringVarP(p, o.flag, short, def, help)
		case *bool:
			b, _ := strconv.ParseBool(def)
			fs.BoolVarP(p, o.flag, short, b, help)
		case *int:
			n, _ := strconv.ParseInt(def, 0, 64)
			fs.IntVarP(p, o.flag, short, int(n), help)
		case *uint64:
			n, _ := strconv.ParseUint(def, 0, 64)
			fs.Uint64VarP(p, o.flag, short, n, help)
		case *[]string:
			var d []string
			if def != "" {
				d = []string{def}
			}
			fs.StringSliceVarP(p, o.flag, short, d, help)
		default:
			return fmt.Errorf("unsupported option type %s for %s", sf.Type, o.name)
		}
	}
	return nil
}
