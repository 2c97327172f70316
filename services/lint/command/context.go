// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package command

import (
	"fmt"
	"maps"
	"strconv"
)

// Well-known context variables supplied by the orchestration pipeline.
const (
	VarRootDir       = "$rootDir"
	VarFile          = "$file"
	VarExtension     = "$extension"
	VarExtensionBare = "$extensionBare"
	VarConfig        = "$config"
	VarDebug         = "$debug"
	VarLint          = "$lint"
	VarLanguage      = "$language"
	VarShebang       = "$shebang"
	VarCode          = "$code"
	VarFixAll        = "$fixAll"
	VarFixOne        = "$fixOne"
	VarFixCategory   = "$fixCategory"
	VarFixInline     = "$fixInline"
)

// Context maps variable names to values. Values are strings, booleans or
// numbers; anything else is treated as truthy and rendered with fmt.
type Context map[string]any

// Clone returns a shallow copy of the context.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	maps.Copy(out, c)
	return out
}

// Truthy reports whether the named variable is set to a truthy value.
func (c Context) Truthy(name string) bool {
	return Truthy(c[name])
}

// String returns the named variable rendered as a string, or "" when unset.
func (c Context) String(name string) string {
	v, ok := c[name]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

// Truthy reports whether v counts as true. nil, false, "", and numeric zero
// are falsy. Every other value is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
