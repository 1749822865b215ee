// Package config is the root of the mod configuration library.
//
// Mods declare a tree of typed options grouped into categories, register
// it under their mod id and read values back while the user edits them.
// Every edit is written through to config/<modid>.json before observers
// hear about it, and a config file edited by hand is picked up again.
//
// # Sub-packages
//
//   - tree: option kinds (toggle, text, slider, dropdown, color, list,
//     item) and categories
//   - builder: fluent declaration of a tree
//   - codec: JSON persistence with forgiving load, YAML and TOML export
//   - store: atomic per-mod file storage
//   - registry: trees by mod id, write-through, reset, reload, search
//   - notify: change observers
//   - watcher: live reload of edited files
//   - loader: TOML and environment sources for Settings
//   - layer: precedence of the Settings sources
//
// # Basic Usage
//
//	root := builder.New("ExampleMod", "Example settings").
//	    Toggle("enabled", "Enabled", true).
//	    Slider("volume", "Volume", 50, 0, 100, 1, 0).
//	    MustBuild()
//
//	reg := registry.New(store.New("config"))
//	cfg, err := reg.Register("ExampleMod", root)
//	if err != nil {
//	    return err
//	}
//	volume, err := cfg.Float("volume")
//
// # Library Settings
//
// The library's own behaviour is read from modernconfig.toml and
// MODERNCONFIG_ environment variables:
//
//	dir = "config"
//	indent = "  "
//
//	[watch]
//	enabled = true
//	debounce = "100ms"
//
//	[log]
//	level = "info"
//
// # Error Handling
//
//   - ErrModNotFound: no tree registered under the mod id
//   - ErrOptionNotFound: key path doesn't name an option
//   - ErrTypeMismatch: option read as the wrong kind
//   - ErrInvalidValue: text can't be parsed for the option kind
//   - ParseError: a settings or config file is malformed
package config
