// Package keys renames object keys in decoded JSON trees between the
// snake_case used by Rails-style servers and the camelCase used by clients.
//
// Transform never mutates its input. It returns a new tree in which every
// map key has been passed through a KeyFunc, walking maps depth-first and
// slices element-wise.
//
//	out := keys.Transform(payload, keys.Camelize)
package keys
