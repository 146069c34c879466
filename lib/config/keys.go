// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import "strings"

// setter applies one raw configuration value.
type setter func(*Options, string) error

func setString(field func(*Options) *string) setter {
	return func(o *Options, value string) error {
		*field(o) = value
		return nil
	}
}

func setBool(field func(*Options) *bool) setter {
	return func(o *Options, value string) error {
		parsed, err := parseBool(value)
		if err != nil {
			return err
		}
		*field(o) = parsed
		return nil
	}
}

// appendWords appends the shell-split value to a list field.
func appendWords(field func(*Options) *[]string) setter {
	return func(o *Options, value string) error {
		words, err := splitWords(value)
		if err != nil {
			return err
		}
		*field(o) = append(*field(o), words...)
		return nil
	}
}

// fileKeys maps configuration-file keys to setters. Environment
// variables share these setters through envKeys.
var fileKeys = map[string]setter{
	"container_image":                    setString(func(o *Options) *string { return &o.Image }),
	"container_name":                     setString(func(o *Options) *string { return &o.Name }),
	"container_image_default":            setString(func(o *Options) *string { return &o.ImageDefault }),
	"container_name_default":             setString(func(o *Options) *string { return &o.NameDefault }),
	"container_manager":                  setString(func(o *Options) *string { return &o.Manager }),
	"distrobox_sudo_program":             setString(func(o *Options) *string { return &o.SudoProgram }),
	"container_user_custom_home":         setString(func(o *Options) *string { return &o.CustomHome }),
	"container_home_prefix":              setString(func(o *Options) *string { return &o.HomePrefix }),
	"container_init_hook":                setString(func(o *Options) *string { return &o.InitHooks }),
	"container_pre_init_hook":            setString(func(o *Options) *string { return &o.PreInitHooks }),
	"container_always_pull":              setBool(func(o *Options) *bool { return &o.AlwaysPull }),
	"container_generate_entry":           setBool(func(o *Options) *bool { return &o.GenerateEntry }),
	"non_interactive":                    setBool(func(o *Options) *bool { return &o.NonInteractive }),
	"container_additional_packages":      appendPackages,
	"container_additional_volumes":       appendWords(func(o *Options) *[]string { return &o.Volumes }),
	"container_manager_additional_flags": appendWords(func(o *Options) *[]string { return &o.AdditionalFlags }),
}

var fileKeyOrder = []string{
	"container_image_default",
	"container_name_default",
	"container_image",
	"container_name",
	"container_manager",
	"distrobox_sudo_program",
	"container_user_custom_home",
	"container_home_prefix",
	"container_init_hook",
	"container_pre_init_hook",
	"container_always_pull",
	"container_generate_entry",
	"non_interactive",
	"container_additional_packages",
	"container_additional_volumes",
	"container_manager_additional_flags",
}

// envKeys maps each supported environment variable to its file key.
var envKeys = map[string]string{
	"DBX_CONTAINER_ALWAYS_PULL":    "container_always_pull",
	"DBX_CONTAINER_CUSTOM_HOME":    "container_user_custom_home",
	"DBX_CONTAINER_HOME_PREFIX":    "container_home_prefix",
	"DBX_CONTAINER_IMAGE":          "container_image",
	"DBX_CONTAINER_MANAGER":        "container_manager",
	"DBX_CONTAINER_NAME":           "container_name",
	"DBX_CONTAINER_GENERATE_ENTRY": "container_generate_entry",
	"DBX_NON_INTERACTIVE":          "non_interactive",
	"DBX_SUDO_PROGRAM":             "distrobox_sudo_program",
}

var envOrder = []string{
	"DBX_CONTAINER_IMAGE",
	"DBX_CONTAINER_NAME",
	"DBX_CONTAINER_MANAGER",
	"DBX_SUDO_PROGRAM",
	"DBX_CONTAINER_CUSTOM_HOME",
	"DBX_CONTAINER_HOME_PREFIX",
	"DBX_CONTAINER_ALWAYS_PULL",
	"DBX_CONTAINER_GENERATE_ENTRY",
	"DBX_NON_INTERACTIVE",
}

// appendPackages accepts package names separated by spaces or commas.
func appendPackages(o *Options, value string) error {
	o.AdditionalPackages = append(o.AdditionalPackages, splitPackages(value)...)
	return nil
}

func splitPackages(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}
