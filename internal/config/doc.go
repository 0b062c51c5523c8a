// Package config holds the nested map options record, the recursive
// default-filling merger applied to every options value, and the strict YAML
// loader for the choromap application file.
//
// Options whose zero value is a meaningful setting but whose default is not
// zero (true flags, widths, opacities, sharpness, delays) are pointers, so an
// explicit false or 0 survives the merge. Elsewhere the zero value means
// "unset": sizes, the aspect ratio and the graticule step cannot be zero.
package config
