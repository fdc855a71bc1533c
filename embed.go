package folio

import "embed"

// EmbeddedAssets contains files shipped inside the binary:
// folio.css, admin.js and seed_posts.json
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
