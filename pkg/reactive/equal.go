package reactive

import "reflect"

// defaultEqual uses == for scalar kinds and reflect.DeepEqual for the rest
// (structs, slices, maps, and interfaces that may hold them).
func defaultEqual[T any](a, b T) bool {
	switch reflect.TypeFor[T]().Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return any(a) == any(b)
	default:
		return reflect.DeepEqual(a, b)
	}
}
