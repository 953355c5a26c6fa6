// Package config loads keyboard profiles and builds them into a runnable
// keyboard.
//
// A profile names the layers, defines the custom keys (dual-role keys, mac
// modifier-remap keys, MIDI settings and an optional Lua script) and gives
// each pipe a table of keycode specs per layer.
//
// # Sources
//
// Profiles are read from, in order of lookup:
//
//  1. An explicit path (.toml, .yaml, .yml or QMK .json)
//  2. <config-dir>/<name>.toml, .yaml or .yml
//  3. The built-in profiles ("default", "mac")
//
// Environment variables prefixed with KEYPIPE_ override MIDI settings
// after loading; see ApplyEnv.
//
// # Basic Usage
//
//	p, err := config.Find("mac", configDir)
//	if err != nil {
//	    return err
//	}
//	kb, err := config.Build(p, config.Options{HID: sink, Log: log})
//	if err != nil {
//	    return err
//	}
//	defer kb.Close()
//	kb.Handler.HandleEvent(input.Press(1, 6))
//
// # Sub-packages
//
//   - loader: TOML and YAML decoding, environment variables
//   - watcher: fsnotify-based change notification for live reload
package config
