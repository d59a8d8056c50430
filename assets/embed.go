// Package assets holds files compiled into the binaries.
package assets

import _ "embed"

// MemberFormLayout is the default slot layout for the member registration form.
//
//go:embed member_form_layout.yaml
var MemberFormLayout []byte
