package config

import "reflect"

// Merge fills every unset part of *dst from defaults and never fails.
//
// Zero scalars, nil pointers, nil slices, nil maps, nil interfaces and nil
// funcs count as unset. Present maps gain the keys they lack, and nested
// structs, pointed-to structs and map values that are themselves maps are
// filled recursively. Values taken from defaults are deep copies, except
// funcs which are kept by reference. dst must be a non-nil pointer whose
// element type matches defaults (or *defaults); anything else is a no-op.
func Merge(dst, defaults any) {
	dv := reflect.ValueOf(dst)
	if !dv.IsValid() || dv.Kind() != reflect.Pointer || dv.IsNil() {
		return
	}
	sv := reflect.ValueOf(defaults)
	if !sv.IsValid() {
		return
	}
	if sv.Kind() == reflect.Pointer && sv.Type() == dv.Type() {
		if sv.IsNil() {
			return
		}
		sv = sv.Elem()
	}
	if dv.Elem().Type() != sv.Type() {
		return
	}
	fill(dv.Elem(), sv)
}

func fill(dst, def reflect.Value) {
	switch dst.Kind() {
	case reflect.Struct:
		for i := 0; i < dst.NumField(); i++ {
			f := dst.Field(i)
			if !f.CanSet() {
				continue
			}
			fill(f, def.Field(i))
		}
	case reflect.Map:
		if def.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(deepCopy(def))
			return
		}
		iter := def.MapRange()
		for iter.Next() {
			k, dval := iter.Key(), iter.Value()
			cur := dst.MapIndex(k)
			if !cur.IsValid() || isNil(cur) {
				dst.SetMapIndex(k, deepCopy(dval))
				continue
			}
			fillMapValue(cur, dval)
		}
	case reflect.Pointer:
		if def.IsNil() {
			return
		}
		if dst.IsNil() {
			dst.Set(deepCopy(def))
			return
		}
		if dst.Elem().Kind() == reflect.Struct && dst.Elem().CanSet() {
			fill(dst.Elem(), def.Elem())
		}
	case reflect.Func:
		if dst.IsNil() {
			dst.Set(def)
		}
	case reflect.Slice:
		if dst.IsNil() {
			dst.Set(deepCopy(def))
		}
	case reflect.Interface:
		if dst.IsNil() {
			dst.Set(deepCopy(def))
			return
		}
		fillMapValue(dst.Elem(), def)
	default:
		if dst.IsZero() {
			dst.Set(def)
		}
	}
}

// fillMapValue descends into map values that are maps on both sides. Maps are
// reference types, so filling the unaddressable copy still updates the
// shared storage.
func fillMapValue(cur, def reflect.Value) {
	for cur.Kind() == reflect.Interface && !cur.IsNil() {
		cur = cur.Elem()
	}
	for def.Kind() == reflect.Interface && !def.IsNil() {
		def = def.Elem()
	}
	if cur.Kind() != reflect.Map || def.Kind() != reflect.Map || cur.IsNil() || def.IsNil() {
		return
	}
	if cur.Type().Key() != def.Type().Key() {
		return
	}
	iter := def.MapRange()
	for iter.Next() {
		k, dval := iter.Key(), iter.Value()
		existing := cur.MapIndex(k)
		if !existing.IsValid() || isNil(existing) {
			v := deepCopy(dval)
			if !v.Type().AssignableTo(cur.Type().Elem()) {
				if !v.Type().ConvertibleTo(cur.Type().Elem()) {
					continue
				}
				v = v.Convert(cur.Type().Elem())
			}
			cur.SetMapIndex(k, v)
			continue
		}
		fillMapValue(existing, dval)
	}
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func deepCopy(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(deepCopy(v.Elem()))
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if out.Field(i).CanSet() {
				out.Field(i).Set(deepCopy(v.Field(i)))
			}
		}
		return out
	}
	return v
}
