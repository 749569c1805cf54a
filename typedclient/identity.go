package typedclient

import (
	"reflect"
	"strconv"
	"strings"
)

const uniqueNamePrefix = "typedclient:"

// TypeKey returns the fully qualified identity of t. Named types are
// qualified by package path and composite types are built from the keys of
// their parts, so two distinct types never share a key. Instantiated generic
// types include their type arguments, so CrudAPI[User] and CrudAPI[Role]
// differ.
func TypeKey(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return t.String()
		}
		return t.PkgPath() + "." + t.Name()
	}

	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeKey(t.Elem())
	case reflect.Slice:
		return "[]" + TypeKey(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeKey(t.Elem())
	case reflect.Map:
		return "map[" + TypeKey(t.Key()) + "]" + TypeKey(t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			return "<-chan " + TypeKey(t.Elem())
		case reflect.SendDir:
			return "chan<- " + TypeKey(t.Elem())
		}
		return "chan (" + TypeKey(t.Elem()) + ")"
	case reflect.Func:
		return "func" + funcKey(t)
	case reflect.Struct:
		fields := make([]string, t.NumField())
		for i := range fields {
			f := t.Field(i)
			field := memberName(f.PkgPath, f.Name)
			if f.Anonymous {
				field = "embedded " + field
			}
			field += " " + TypeKey(f.Type)
			if f.Tag != "" {
				field += " " + strconv.Quote(string(f.Tag))
			}
			fields[i] = field
		}
		return "struct{" + strings.Join(fields, "; ") + "}"
	case reflect.Interface:
		methods := make([]string, t.NumMethod())
		for i := range methods {
			m := t.Method(i)
			methods[i] = memberName(m.PkgPath, m.Name) + funcKey(m.Type)
		}
		return "interface{" + strings.Join(methods, "; ") + "}"
	}
	return t.String()
}

// funcKey returns the parameter and result list of function type t.
func funcKey(t reflect.Type) string {
	in := make([]string, t.NumIn())
	for i := range in {
		if t.IsVariadic() && i == len(in)-1 {
			in[i] = "..." + TypeKey(t.In(i).Elem())
			continue
		}
		in[i] = TypeKey(t.In(i))
	}
	out := make([]string, t.NumOut())
	for i := range out {
		out[i] = TypeKey(t.Out(i))
	}
	key := "(" + strings.Join(in, ", ") + ")"
	if len(out) > 0 {
		key += " (" + strings.Join(out, ", ") + ")"
	}
	return key
}

// memberName qualifies unexported field and method names by package path.
func memberName(pkgPath, name string) string {
	if pkgPath == "" {
		return name
	}
	return pkgPath + "." + name
}

// UniqueName returns the transport name derived for a client type without
// an explicit TransportName.
func UniqueName(t reflect.Type) string {
	return uniqueNamePrefix + TypeKey(t)
}

// ResolveName returns the transport name of a client type: the explicit
// TransportName when set, otherwise UniqueName.
func ResolveName(t reflect.Type, s *Settings) string {
	if s != nil && s.TransportName != "" {
		return s.TransportName
	}
	return UniqueName(t)
}

// ClientKey returns the container key a client type is registered under.
func ClientKey(t reflect.Type) string {
	return "typedclient/client/" + TypeKey(t)
}

// SettingsKey returns the container key holding a client type's Settings.
func SettingsKey(t reflect.Type) string {
	return "typedclient/settings/" + TypeKey(t)
}

// RequestBuilderKey returns the container key holding a client type's
// RequestBuilder.
func RequestBuilderKey(t reflect.Type) string {
	return "typedclient/request-builder/" + TypeKey(t)
}
