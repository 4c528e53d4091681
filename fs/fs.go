// Package appfs embeds the app's static assets: database migrations,
// email templates and the common-passwords deny list.
package appfs

import "embed"

// Directory patterns skip _-prefixed files; the base templates must stay
// explicitly listed.
//
//go:embed migrations templates common-passwords.txt.gz
//go:embed templates/email/_base.txt templates/email/_base.gohtml
var FS embed.FS
