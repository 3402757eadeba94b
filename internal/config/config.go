// Package config implements the Options and PermissionConfig collaborator
// interfaces consumed by the tunnel's policy hooks, plus a YAML-backed
// reference implementation for Options (modeled on the retrieval pack's use
// of gopkg.in/yaml.v3 for on-disk settings) and two reference
// implementations of PermissionConfig.
package config

import (
	"os"

	"github.com/vibeproxy/tunnel/internal/chest"
	"gopkg.in/yaml.v3"

	"github.com/vibeproxy/tunnel/internal/session"
)

// Options is the generic settings lookup the policy hooks consult, modeled
// directly on the original source's `config.properties.getBoolean(name)`
// call style.
type Options interface {
	GetBool(name string) bool
	GetInt(name string) int
	GetString(name string) string
}

// Permission is the outcome of a block-placement/interaction check.
type Permission int

const (
	PermissionAllow Permission = iota
	PermissionDeny
)

// PermissionConfig is the region/permission collaborator consulted by the
// block-placement and chest hooks.
type PermissionConfig interface {
	BlockPermission(s *session.Session, coord chest.Coordinate, heldItem int16) Permission
}

// File is the on-disk settings document, loaded via FromYAML. Field names
// match spec.md §6's "Configuration consumed" keys.
type File struct {
	CommandPrefix      string `yaml:"command_prefix"`
	AllowGuests        bool   `yaml:"allow_guests"`
	EnableModPackets   bool   `yaml:"enable_mod_packets"`
	UseSlashes         bool   `yaml:"use_slashes"`
	UseCustAuth        bool   `yaml:"use_cust_auth"`
	EnableEvents       bool   `yaml:"enable_events"`
	UseMsgFormats      bool   `yaml:"use_msg_formats"`
	WrapChat           bool   `yaml:"wrap_chat"`
	ChatConsoleToOps   bool   `yaml:"chat_console_to_ops"`
	ForwardChat        bool   `yaml:"forward_chat"`
	ShowListOnConnect  bool   `yaml:"show_list_on_connect"`
	IdleTimeoutSeconds int    `yaml:"idle_timeout_seconds"`
	ServerListMOTD     string `yaml:"server_list_motd"`
	MaxPlayers         int    `yaml:"max_players"`
	extra              map[string]string
}

// FromYAML loads a File from path, applying defaults for any field the
// document omits: the defaults are set on the struct before unmarshalling,
// and yaml.v3 leaves fields whose keys are absent from the document as they
// were.
func FromYAML(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := &File{
		CommandPrefix:      "/",
		AllowGuests:        true,
		EnableModPackets:   false,
		UseSlashes:         true,
		UseCustAuth:        false,
		IdleTimeoutSeconds: 30,
		MaxPlayers:         20,
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

// GetBool implements Options for the small set of boolean keys File knows
// about by name; unrecognized names return false.
func (f *File) GetBool(name string) bool {
	switch name {
	case "allow_guests":
		return f.AllowGuests
	case "enable_mod_packets":
		return f.EnableModPackets
	case "use_slashes":
		return f.UseSlashes
	case "use_cust_auth":
		return f.UseCustAuth
	case "enable_events":
		return f.EnableEvents
	case "use_msg_formats":
		return f.UseMsgFormats
	case "wrap_chat":
		return f.WrapChat
	case "chat_console_to_ops":
		return f.ChatConsoleToOps
	case "forward_chat":
		return f.ForwardChat
	case "show_list_on_connect":
		return f.ShowListOnConnect
	default:
		return false
	}
}

// GetInt implements Options.
func (f *File) GetInt(name string) int {
	switch name {
	case "idle_timeout_seconds":
		return f.IdleTimeoutSeconds
	case "max_players":
		return f.MaxPlayers
	default:
		return 0
	}
}

// GetString implements Options.
func (f *File) GetString(name string) string {
	switch name {
	case "command_prefix":
		return f.CommandPrefix
	case "server_list_motd":
		return f.ServerListMOTD
	default:
		if f.extra == nil {
			return ""
		}
		return f.extra[name]
	}
}

// AllowAllPermissions is the permissive PermissionConfig reference
// implementation: every placement and interaction is allowed.
type AllowAllPermissions struct{}

// BlockPermission implements PermissionConfig.
func (AllowAllPermissions) BlockPermission(*session.Session, chest.Coordinate, int16) Permission {
	return PermissionAllow
}

// Region is an axis-aligned box with an allow/deny outcome, the unit
// RegionPermissions checks membership against.
type Region struct {
	MinX, MinY, MinZ int32
	MaxX, MaxY, MaxZ int32
	Allow            bool
}

func (r Region) contains(c chest.Coordinate) bool {
	return c.X >= r.MinX && c.X <= r.MaxX &&
		c.Y >= r.MinY && c.Y <= r.MaxY &&
		c.Z >= r.MinZ && c.Z <= r.MaxZ
}

// RegionPermissions is an area-based PermissionConfig reference
// implementation: the first region containing coord decides the outcome;
// coordinates outside every region default to allow.
type RegionPermissions struct {
	Regions []Region
}

// BlockPermission implements PermissionConfig.
func (rp RegionPermissions) BlockPermission(_ *session.Session, coord chest.Coordinate, _ int16) Permission {
	for _, r := range rp.Regions {
		if r.contains(coord) {
			if r.Allow {
				return PermissionAllow
			}
			return PermissionDeny
		}
	}
	return PermissionAllow
}
